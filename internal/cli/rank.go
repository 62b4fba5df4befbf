package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/app"
	"vehicle-match-engine/internal/handlers"
	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/catalog"
	"vehicle-match-engine/internal/services/inventory"
	"vehicle-match-engine/internal/services/profiles"
	"vehicle-match-engine/internal/services/quiz"
	"vehicle-match-engine/internal/services/scoring"
	"vehicle-match-engine/internal/utils"
)

const metricsSource = "cli"

var errNoVehicles = errors.New("catalog contains no vehicles")

type rankOptions struct {
	catalogDir  string
	profileFile string
	quizFile    string
	userID      string
	top         int
	noJitter    bool
	maxBudget   int
	fuels       []string
	bodies      []string
	output      string
}

func (o *rankOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.catalogDir, "catalog", "c", "", "catalog directory (default CATALOG_DIR)")
	f.StringVarP(&o.profileFile, "profile", "p", "", "JSON file holding a shopper profile")
	f.StringVarP(&o.quizFile, "quiz", "q", "", "JSON file holding quiz answers")
	f.StringVarP(&o.userID, "user-id", "u", "", "load the stored profile of this user")
	f.BoolVar(&o.noJitter, "no-jitter", false, "disable score jitter for reproducible output")
}

// session is a catalog and engine ready to rank against.
type session struct {
	engine   *scoring.Engine
	snapshot *catalog.Snapshot
	ranker   *handlers.Ranker
	profiles profiles.Repository
	closer   func()
}

// openSession loads the catalog, and the profile stores when a user id is given.
func openSession(ctx context.Context, o *rankOptions) (*session, error) {
	cfg, err := loadConfig(o.catalogDir)
	if err != nil {
		return nil, err
	}
	if o.noJitter {
		cfg.ScoringJitter = false
	}

	if o.userID != "" {
		a, err := app.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := a.OpenProfiles(ctx); err != nil {
			a.Close()
			return nil, err
		}
		if err := a.LoadCatalog(ctx); err != nil {
			a.Close()
			return nil, err
		}
		return &session{engine: a.Engine, snapshot: a.Catalog, ranker: a.Ranker(), profiles: a.Profiles, closer: a.Close}, nil
	}

	normalizer, err := catalog.NewNormalizer(catalog.WithLogger(utils.Named("catalog")))
	if err != nil {
		return nil, err
	}
	vehicles, errs := catalog.Load(ctx, normalizer, catalog.DirSource{Dir: cfg.CatalogDir})
	for _, e := range errs {
		utils.GetLogger().Warn("Catalog problem", utils.Error(e))
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoVehicles, cfg.CatalogDir)
	}

	engine := scoring.NewEngine(scoring.WithJitter(cfg.ScoringJitter), scoring.WithLogger(utils.Named("scoring")))
	snapshot := catalog.NewSnapshot(vehicles)
	return &session{
		engine:   engine,
		snapshot: snapshot,
		ranker:   handlers.NewRanker(engine, snapshot, nil),
		closer:   func() {},
	}, nil
}

// readProfile builds the inline profile from --profile and --quiz. Quiz answers overlay the file.
func readProfile(o *rankOptions) (*models.UserProfile, error) {
	var profile *models.UserProfile

	if o.profileFile != "" {
		data, err := os.ReadFile(o.profileFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
		profile = &models.UserProfile{}
		if err := json.Unmarshal(data, profile); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", o.profileFile, err)
		}
	}

	if o.quizFile != "" {
		data, err := os.ReadFile(o.quizFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read quiz answers: %w", err)
		}
		var answers quiz.Answers
		if err := json.Unmarshal(data, &answers); err != nil {
			return nil, fmt.Errorf("failed to parse quiz answers %s: %w", o.quizFile, err)
		}
		fromQuiz := quiz.ToProfile(answers)
		if profile == nil {
			profile = &fromQuiz
		} else {
			merged := profile.Merge(&fromQuiz)
			profile = &merged
		}
	}
	return profile, nil
}

func (o *rankOptions) filters() *inventory.Filters {
	q := url.Values{"fuelType": o.fuels, "bodyType": o.bodies}
	if o.maxBudget > 0 {
		q.Set("maxBudget", strconv.Itoa(o.maxBudget))
	}
	f := inventory.FiltersFromQuery(q)
	return &f
}

func newRankCmd() *cobra.Command {
	o := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the catalog for a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRank(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	o.bind(cmd)
	f := cmd.Flags()
	f.IntVarP(&o.top, "top", "n", 10, "number of vehicles to show")
	f.IntVar(&o.maxBudget, "max-budget", 0, "stated budget in USD, widened by the inventory buffer")
	f.StringSliceVar(&o.fuels, "fuel", nil, "fuel types to keep (repeatable)")
	f.StringSliceVar(&o.bodies, "body", nil, "body types to keep (repeatable)")
	f.StringVarP(&o.output, "output", "o", "table", "output format: table or json")
	return cmd
}

func runRank(ctx context.Context, out io.Writer, o *rankOptions) error {
	profile, err := readProfile(o)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, o)
	if err != nil {
		return err
	}
	defer s.closer()

	resp, err := s.ranker.Rank(ctx, handlers.RankRequest{
		Profile: profile,
		UserID:  o.userID,
		Filters: o.filters(),
		Limit:   o.top,
	}, metricsSource)
	if err != nil {
		return err
	}

	if o.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return writeRankTable(out, resp)
}

func writeRankTable(out io.Writer, resp *handlers.RankResponse) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tVEHICLE\tPRICE\tMONTHLY\tWHY")
	for i, r := range resp.Results {
		fmt.Fprintf(w, "%d\t%.1f\t%d %s %s\t$%d\t$%.0f\t%s\n",
			i+1, r.Score, r.Vehicle.Year, r.Vehicle.Name, r.Vehicle.Trim,
			r.Vehicle.Price, r.Estimate.MonthlyPayment, r.Explanation)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d matching vehicles shown\n", len(resp.Results), resp.Matched)
	return err
}
