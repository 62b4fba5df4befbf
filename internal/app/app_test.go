package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/config"
	"vehicle-match-engine/internal/models"
)

const lineup = `[
  {"id": 1, "name": "Corolla", "trim": "LE", "year": 2025, "price": 22050, "bodyType": "Sedan", "fuelType": "Gas"},
  {"id": 2, "name": "bZ4X", "trim": "XLE", "year": 2025, "price": 37070, "bodyType": "SUV", "fuelType": "EV", "drivetrain": "AWD"}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	catalogDir := filepath.Join(dir, "vehicles")
	require.NoError(t, os.MkdirAll(catalogDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "lineup.json"), []byte(lineup), 0o644))

	return &config.Config{
		CatalogDir:      catalogDir,
		ProfilesCSVPath: filepath.Join(dir, "profiles.csv"),
		ProfileBackend:  "csv",
		ScoringJitter:   false,
	}
}

func TestAppLoadsCatalogAndProfiles(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.S3, "no bucket configured")
	require.NoError(t, a.LoadCatalog(ctx))
	assert.Equal(t, 2, a.Catalog.Len())

	require.NoError(t, a.OpenProfiles(ctx))
	assert.NotNil(t, a.Redis)

	require.NoError(t, a.Profiles.Save(ctx, &models.UserProfile{
		UserID: "u1", Name: "Sam", FuelPreference: "ev",
	}))
	assert.FileExists(t, cfg.ProfilesCSVPath)
	assert.True(t, mr.Exists("profile:prefs:u1"), "preferences land in redis")

	health, status := a.Health().Check(ctx)
	assert.Equal(t, 200, status)
	assert.Equal(t, "connected", health.Cache)
	assert.Equal(t, "not configured", health.Database)

	api := a.API(ctx)
	assert.Nil(t, api.Uploads)
	assert.Nil(t, api.Recommendations)
	assert.NotNil(t, api.Routes())
}

func TestAppDegradesWithoutRedis(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.OpenProfiles(ctx))
	assert.Nil(t, a.Redis)

	require.NoError(t, a.Profiles.Save(ctx, &models.UserProfile{UserID: "u2", FuelPreference: "hybrid"}))
	p, err := a.Profiles.Load(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "hybrid", p.FuelPreference)
}

func TestAppEmptyCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogDir = t.TempDir()

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	assert.Error(t, a.LoadCatalog(context.Background()))
	assert.Equal(t, 0, a.Catalog.Len())
}

func TestAppLoadReviews(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReviewsPath = filepath.Join(t.TempDir(), "reviews.json")

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, a.LoadReviews())
	assert.Zero(t, a.Reviews.Len())

	require.NoError(t, os.WriteFile(cfg.ReviewsPath,
		[]byte(`[{"car_model": "Corolla", "full_description": "Good value"}]`), 0o644))
	require.NoError(t, a.LoadReviews())
	assert.Equal(t, 1, a.Reviews.Len())
	assert.Same(t, a.Reviews, a.API(context.Background()).Reviews)

	require.NoError(t, os.WriteFile(cfg.ReviewsPath, []byte(`{`), 0o644))
	assert.Error(t, a.LoadReviews())
	assert.NotNil(t, a.Reviews)
}
