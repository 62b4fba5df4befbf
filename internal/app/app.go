// Package app builds the engine's services from configuration.
//
// Every optional backend degrades instead of failing: no PostgreSQL means the
// CSV record file, no Redis means in-process preferences, no AWS credentials
// means no S3 catalog and no email.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/config"
	"vehicle-match-engine/internal/handlers"
	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/services/database"
	"vehicle-match-engine/internal/services/profiles"
	"vehicle-match-engine/internal/services/reviews"
	s3service "vehicle-match-engine/internal/services/s3"
	"vehicle-match-engine/internal/services/scoring"
	"vehicle-match-engine/internal/services/ses"
	"vehicle-match-engine/internal/utils"
)

// App holds the services shared by the server, the Lambda functions and the CLI.
type App struct {
	Config     *config.Config
	Engine     *scoring.Engine
	Normalizer *catalog.Normalizer
	Catalog    *catalog.Snapshot
	Reviews    *reviews.Library
	S3         *s3service.Service

	Profiles *profiles.SplitRepository
	DB       *database.DB
	Redis    *redis.Client

	logger *zap.Logger
}

// New creates the engine, the normalizer and, when AWS is configured, the S3 service.
// Profiles and the catalog are opened separately so each entry point pays only for what it uses.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := utils.Named("app")

	normalizer, err := catalog.NewNormalizer(catalog.WithLogger(utils.Named("catalog")))
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Engine: scoring.NewEngine(
			scoring.WithJitter(cfg.ScoringJitter),
			scoring.WithLogger(utils.Named("scoring")),
		),
		Normalizer: normalizer,
		Catalog:    catalog.NewSnapshot(nil),
		logger:     logger,
	}

	if cfg.S3Bucket != "" {
		svc, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			logger.Warn("S3 unavailable, catalog uploads disabled", utils.Error(err))
		} else {
			a.S3 = svc
		}
	}
	return a, nil
}

// Sources returns the catalog sources in precedence order.
func (a *App) Sources() []catalog.Source {
	var sources []catalog.Source
	if a.Config.CatalogFromS3 && a.S3 != nil {
		sources = append(sources, catalog.S3Source{Store: a.S3, Prefix: a.Config.CatalogNormalizedPrefix})
	}
	if a.Config.CatalogDir != "" {
		sources = append(sources, catalog.DirSource{Dir: a.Config.CatalogDir})
	}
	return sources
}

// ReadCatalog loads and normalizes every source without touching the active snapshot.
func (a *App) ReadCatalog(ctx context.Context) ([]models.Vehicle, []error) {
	return catalog.Load(ctx, a.Normalizer, a.Sources()...)
}

// LoadCatalog replaces the active snapshot with a fresh read of the sources.
func (a *App) LoadCatalog(ctx context.Context) error {
	vehicles, errs := a.ReadCatalog(ctx)
	for _, err := range errs {
		a.logger.Warn("Catalog problem", utils.Error(err))
	}
	if len(vehicles) == 0 {
		return fmt.Errorf("no vehicles loaded from %d catalog sources", len(a.Sources()))
	}

	a.Catalog.Replace(vehicles)
	a.logger.Info("Catalog loaded",
		utils.Int("vehicles", len(vehicles)),
		utils.Int("problems", len(errs)))
	return nil
}

// OpenProfiles connects the record and preference stores.
func (a *App) OpenProfiles(ctx context.Context) error {
	cfg := a.Config
	storeLogger := utils.Named("profiles")

	var records profiles.RecordStore
	if cfg.UsePostgres() {
		db, err := database.New(ctx, cfg.DatabaseURL())
		if err != nil {
			a.logger.Warn("PostgreSQL unavailable, using the CSV record file", utils.Error(err))
		} else {
			a.DB = db
			records = profiles.NewPostgresStore(database.NewProfileRepository(db))
		}
	}
	if records == nil {
		records = profiles.NewCSVStore(cfg.ProfilesCSVPath, storeLogger)
	}

	var prefs profiles.PreferenceStore = profiles.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := profiles.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := profiles.NewRedisStore(client, cfg.PreferenceTTL)
		if err := store.Ping(ctx); err != nil {
			a.logger.Warn("Redis unavailable, keeping preferences in memory", utils.Error(err))
			_ = client.Close()
		} else {
			a.Redis = client
			prefs = store
		}
	}

	a.Profiles = profiles.NewSplitRepository(records, prefs, storeLogger)
	return nil
}

// LoadReviews opens the review export. A missing export leaves an empty library.
func (a *App) LoadReviews() error {
	lib, err := reviews.Open(a.Config.ReviewsPath, utils.Named("reviews"))
	if err != nil {
		a.Reviews = reviews.NewLibrary(nil)
		return err
	}
	a.Reviews = lib
	return nil
}

// Ranker returns a ranker over the active catalog and, when opened, the profile store.
func (a *App) Ranker() *handlers.Ranker {
	var repo profiles.Repository
	if a.Profiles != nil {
		repo = a.Profiles
	}
	return handlers.NewRanker(a.Engine, a.Catalog, repo)
}

// Health returns a health handler probing the connected backends.
func (a *App) Health() *handlers.HealthHandler {
	var dbCheck, cacheCheck handlers.Checker
	if a.DB != nil {
		dbCheck = a.DB.HealthCheck
	}
	if a.Redis != nil {
		cacheCheck = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	return handlers.NewHealthHandler(dbCheck, cacheCheck, a.Catalog)
}

// Recommendations returns the email handler, or nil when no sender is configured.
func (a *App) Recommendations(ctx context.Context) *handlers.RecommendationHandler {
	if a.Config.SESSenderEmail == "" {
		return nil
	}
	mailer, err := ses.NewService(ctx, a.Config.AWSRegion, a.Config.SESSenderEmail)
	if err != nil {
		a.logger.Warn("SES unavailable, recommendation email disabled", utils.Error(err))
		return nil
	}
	return handlers.NewRecommendationHandler(a.Ranker(), mailer, a.Config.DashboardURL)
}

// API assembles the HTTP surface.
func (a *App) API(ctx context.Context) *handlers.API {
	api := &handlers.API{
		Health:          a.Health(),
		Ranker:          a.Ranker(),
		Catalog:         a.Catalog,
		Reviews:         a.Reviews,
		Recommendations: a.Recommendations(ctx),
		LoadCatalog:     a.ReadCatalog,
	}
	if a.Profiles != nil {
		api.Profiles = a.Profiles
	}
	if a.S3 != nil {
		api.Uploads = handlers.NewPresignedURLHandler(a.S3, a.Config.CatalogRawPrefix)
	}
	return api
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
