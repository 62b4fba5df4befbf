// Package scoring computes how well a vehicle fits a shopper's profile.
//
// Scores are a weighted sum of independent rules (affordability, efficiency,
// seating, environment, priority, direct preferences and feature wishes) on top
// of a vehicle-only baseline, clamped to [65, 92] and rounded to one decimal.
// Scoring is pure: no I/O, no shared state, safe to call from any goroutine.
package scoring

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
)

// Engine scores and ranks vehicles against a profile.
type Engine struct {
	jitter bool
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithJitter toggles the identity-derived offset that separates otherwise equal scores.
func WithJitter(enabled bool) Option {
	return func(e *Engine) {
		e.jitter = enabled
	}
}

// WithLogger sets the logger used for ranking diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. Jitter is on by default.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		jitter: true,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// ScoreVehicle scores one vehicle with the default engine.
func ScoreVehicle(profile *models.UserProfile, vehicle *models.Vehicle) models.Compatibility {
	return defaultEngine.Score(profile, vehicle)
}

// RankVehicles ranks a catalog with the default engine.
func RankVehicles(profile *models.UserProfile, vehicles []models.Vehicle) []models.CompatibilityResult {
	return defaultEngine.Rank(profile, vehicles)
}

// Score returns the compatibility of vehicle for profile. It never fails:
// a nil profile scores as an empty one and a nil vehicle gets the minimum score.
func (e *Engine) Score(profile *models.UserProfile, vehicle *models.Vehicle) models.Compatibility {
	b := e.Explain(profile, vehicle)
	return models.Compatibility{Score: b.Score, Explanation: b.Explanation()}
}

// Explain evaluates every rule and returns the per-rule contributions.
func (e *Engine) Explain(profile *models.UserProfile, vehicle *models.Vehicle) Breakdown {
	if vehicle == nil {
		return Breakdown{Raw: math.NaN(), Score: models.MinCompatibilityScore}
	}
	if profile == nil {
		profile = &models.UserProfile{}
	}
	in := newInputs(profile)

	var b Breakdown
	b.Base = baseScore(vehicle)
	b.Affordability = affordability(in, vehicle)
	b.Efficiency = efficiency(in, vehicle)
	b.Passengers = passengers(in, vehicle)
	b.Environment = environment(in, vehicle)
	b.Priority = priority(in, vehicle)
	b.FuelPreference = fuelPreference(in, vehicle)
	b.BodyPreference = bodyPreference(in, vehicle)
	b.Budget = budget(in, vehicle)
	b.Features = featureWishes(in, vehicle)
	if e.jitter {
		b.Jitter = jitter(vehicle)
	}

	b.Raw = b.total()
	b.Score = finalize(b.Raw)
	return b
}

// Rank scores every vehicle and sorts descending by score.
// Equal scores keep their catalog order.
func (e *Engine) Rank(profile *models.UserProfile, vehicles []models.Vehicle) []models.CompatibilityResult {
	results := make([]models.CompatibilityResult, 0, len(vehicles))
	for i := range vehicles {
		c := e.Score(profile, &vehicles[i])
		results = append(results, models.CompatibilityResult{
			Vehicle:     vehicles[i],
			Score:       c.Score,
			Explanation: c.Explanation,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > 0 {
		e.logger.Debug("ranked vehicles",
			zap.Int("count", len(results)),
			zap.Float64("top_score", results[0].Score),
			zap.String("top_vehicle", results[0].Vehicle.Name+" "+results[0].Vehicle.Trim))
	}
	return results
}

// finalize clamps to the visible range and rounds to one decimal.
func finalize(raw float64) float64 {
	if math.IsNaN(raw) {
		return models.MinCompatibilityScore
	}
	score := math.Max(models.MinCompatibilityScore, math.Min(models.MaxCompatibilityScore, raw))
	return math.Round(score*10) / 10
}

// inputs holds the profile fields each rule reads, trimmed and lower-cased once.
type inputs struct {
	profile          *models.UserProfile
	annualIncome     string
	downPayment      string
	loanTerm         string
	driveEnvironment string
	weather          string
	dailyDrive       string
	priority         models.Priority
	passengers       string
	budgetRange      string
	fuelPreference   string
	bodyPreference   string
	desiredFeatures  []string
}

func newInputs(p *models.UserProfile) *inputs {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return &inputs{
		profile:          p,
		annualIncome:     norm(p.AnnualIncome),
		downPayment:      strings.TrimSpace(p.DownPayment),
		loanTerm:         strings.TrimSpace(p.LoanTermPreference),
		driveEnvironment: norm(p.DriveEnvironment),
		weather:          norm(p.Weather),
		dailyDrive:       norm(p.DailyDrive),
		priority:         models.Priority(norm(p.Priority)),
		passengers:       strings.TrimSpace(p.Passengers),
		budgetRange:      norm(p.BudgetRange),
		fuelPreference:   norm(p.FuelPreference),
		bodyPreference:   norm(p.BodyTypePreference),
		desiredFeatures:  p.DesiredFeatures(),
	}
}
