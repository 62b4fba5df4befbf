package scoring_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/scoring"
)

func hybridSedan() models.Vehicle {
	return models.Vehicle{
		ID:         101,
		Name:       "Camry",
		Trim:       "LE",
		Year:       2025,
		Price:      28400,
		BodyType:   models.BodyTypeSedan,
		FuelType:   models.FuelTypeHybrid,
		Drivetrain: models.DrivetrainFWD,
		MPGCity:    50,
		MPGHighway: 53,
		Seats:      5,
		CargoSpace: "15.1 cu ft",
		Features:   []string{"Toyota Safety Sense 3.0", "Apple CarPlay", "Dual-zone climate control"},
	}
}

func gasTruck() models.Vehicle {
	return models.Vehicle{
		ID:         202,
		Name:       "Tacoma",
		Trim:       "SR5",
		Year:       2025,
		Price:      35000,
		BodyType:   models.BodyTypeTruck,
		FuelType:   models.FuelTypeGas,
		Drivetrain: models.Drivetrain4WD,
		MPGCity:    18,
		MPGHighway: 22,
		Seats:      5,
		CargoSpace: "N/A",
		Features:   []string{"Towing package", "Bed liner"},
	}
}

func TestScoreClampBounds(t *testing.T) {
	t.Run("bare vehicle and empty profile hit the floor", func(t *testing.T) {
		v := models.Vehicle{ID: 1, Name: "Corolla", Trim: "L", Year: 2020, Price: 21000, FuelType: models.FuelTypeGas}
		got := scoring.ScoreVehicle(&models.UserProfile{UserID: "u1"}, &v)
		assert.Equal(t, models.MinCompatibilityScore, got.Score)
		assert.Equal(t, models.DefaultExplanation, got.Explanation)
	})

	t.Run("everything matching hits the ceiling", func(t *testing.T) {
		v := models.Vehicle{
			ID:         7,
			Name:       "bZ4X",
			Trim:       "Limited",
			Year:       2025,
			Price:      44000,
			BodyType:   models.BodyTypeSUV,
			FuelType:   models.FuelTypeEV,
			Drivetrain: models.DrivetrainAWD,
			MPGCity:    131,
			MPGHighway: 107,
			Seats:      8,
			Features:   []string{"Heated seats", "Wireless charging", "Panoramic moonroof", "Blind spot monitor"},
		}
		p := &models.UserProfile{
			UserID:             "u2",
			AnnualIncome:       "over_150k",
			DownPayment:        "$20,000",
			Priority:           "fuel_efficiency",
			Passengers:         "7+",
			DriveEnvironment:   "city",
			Weather:            "snowy",
			FuelPreference:     "ev",
			BodyTypePreference: "suv",
			BudgetRange:        "35k_45k",
			SelectedFeatures:   []string{"Heated Seats", "Sunroof"},
		}
		got := scoring.ScoreVehicle(p, &v)
		assert.Equal(t, models.MaxCompatibilityScore, got.Score)
	})
}

func TestScoreIsDeterministic(t *testing.T) {
	v := hybridSedan()
	p := &models.UserProfile{UserID: "u", Priority: "technology", Passengers: "3-4", BudgetRange: "25k_35k"}

	first := scoring.ScoreVehicle(p, &v)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, scoring.ScoreVehicle(p, &v))
	}
}

func TestScoreRoundsToOneDecimal(t *testing.T) {
	engine := scoring.NewEngine()
	for _, v := range []models.Vehicle{hybridSedan(), gasTruck()} {
		for _, p := range []models.UserProfile{
			{Priority: "fuel_efficiency", Passengers: "3-4"},
			{Priority: "safety", DriveEnvironment: "rural"},
			{AnnualIncome: "75k_100k", DownPayment: "4000"},
		} {
			got := engine.Score(&p, &v)
			assert.InDelta(t, math.Round(got.Score*10)/10, got.Score, 1e-9)
		}
	}
}

func TestSeatShortfallPenalty(t *testing.T) {
	engine := scoring.NewEngine(scoring.WithJitter(false))
	p := &models.UserProfile{Passengers: "7+", FuelPreference: "hybrid", DriveEnvironment: "suburbs"}

	roomy := models.Vehicle{
		ID: 10, Name: "Highlander", Trim: "Limited", Year: 2025, Price: 45000,
		BodyType: models.BodyTypeSUV, FuelType: models.FuelTypeHybrid, Drivetrain: models.DrivetrainAWD,
		Seats: 8, Features: []string{"a", "b", "c", "d"},
	}
	cramped := roomy
	cramped.Seats = 4

	roomyScore := engine.Explain(p, &roomy)
	crampedScore := engine.Explain(p, &cramped)

	assert.InDelta(t, 16.4, roomyScore.Passengers.Points, 1e-9)
	assert.InDelta(t, -15.0, crampedScore.Passengers.Points, 1e-9)
	assert.Contains(t, crampedScore.Passengers.Notes, "May not accommodate all 7 passengers")
	assert.InDelta(t, 86.4, roomyScore.Score, 1e-9)
	assert.Less(t, crampedScore.Score, roomyScore.Score)
}

func TestGracefulDegradation(t *testing.T) {
	p := &models.UserProfile{UserID: "only-id"}
	vehicles := []models.Vehicle{
		{},
		hybridSedan(),
		gasTruck(),
		{ID: -3, Name: "Mystery", Price: -50, Seats: -2, Year: -1},
	}

	for _, v := range vehicles {
		got := scoring.ScoreVehicle(p, &v)
		assert.False(t, math.IsNaN(got.Score))
		assert.GreaterOrEqual(t, got.Score, models.MinCompatibilityScore)
		assert.LessOrEqual(t, got.Score, models.MaxCompatibilityScore)
		assert.NotEmpty(t, got.Explanation)
	}
}

func TestNilInputs(t *testing.T) {
	v := hybridSedan()
	assert.NotPanics(t, func() {
		got := scoring.ScoreVehicle(nil, &v)
		assert.GreaterOrEqual(t, got.Score, models.MinCompatibilityScore)
	})
	assert.NotPanics(t, func() {
		got := scoring.ScoreVehicle(&models.UserProfile{}, nil)
		assert.Equal(t, models.MinCompatibilityScore, got.Score)
		assert.Equal(t, models.DefaultExplanation, got.Explanation)
	})
}

func TestScenarioFuelEfficientHybridBeatsGasTruck(t *testing.T) {
	p := &models.UserProfile{UserID: "a", Priority: "fuel_efficiency", Passengers: "3-4"}
	sedan, truck := hybridSedan(), gasTruck()

	hybrid := scoring.ScoreVehicle(p, &sedan)
	gas := scoring.ScoreVehicle(p, &truck)

	assert.Greater(t, hybrid.Score, gas.Score)
	assert.Equal(t, "Excellent fuel economy (52 MPG), Spacious with extra seating capacity", hybrid.Explanation)
	assert.Contains(t, hybrid.Explanation, "fuel economy")
}

func TestScenarioAffordabilityPenalizesExpensiveVehicle(t *testing.T) {
	engine := scoring.NewEngine()
	p := &models.UserProfile{AnnualIncome: "30k_50k", DownPayment: "$2000", LoanTermPreference: "60"}

	cheap := gasTruck()
	cheap.Price = 25000
	pricey := gasTruck()
	pricey.Price = 70000

	cheapB := engine.Explain(p, &cheap)
	priceyB := engine.Explain(p, &pricey)

	require.True(t, cheapB.Affordability.Applied)
	require.True(t, priceyB.Affordability.Applied)
	assert.InDelta(t, 14.68, cheapB.Affordability.Points, 0.01)
	assert.InDelta(t, -21.84, priceyB.Affordability.Points, 0.01)
	assert.Equal(t, []string{"Slightly above ideal budget"}, cheapB.Affordability.Notes)
	assert.Equal(t, []string{"Significantly exceeds budget"}, priceyB.Affordability.Notes)
	assert.Less(t, priceyB.Affordability.Points, cheapB.Affordability.Points)
}

func TestAffordabilityMonotonicBelowBudget(t *testing.T) {
	engine := scoring.NewEngine()
	p := &models.UserProfile{AnnualIncome: "75k_100k", DownPayment: "5,000", LoanTermPreference: "72"}

	v := hybridSedan()
	prev := math.Inf(-1)
	// max affordable here is roughly 60.1k; walk down from below it
	for price := 58000; price >= 1000; price -= 500 {
		v.Price = price
		points := engine.Explain(p, &v).Affordability.Points
		assert.GreaterOrEqual(t, points, prev, "price %d", price)
		prev = points
	}
}

func TestAffordabilityRequiresIncomeAndDownPayment(t *testing.T) {
	engine := scoring.NewEngine()
	v := hybridSedan()

	for _, p := range []models.UserProfile{
		{AnnualIncome: "50k_75k"},
		{DownPayment: "$3000"},
		{},
	} {
		assert.False(t, engine.Explain(&p, &v).Affordability.Applied)
	}

	t.Run("unparsable down payment counts as zero", func(t *testing.T) {
		p := &models.UserProfile{AnnualIncome: "under_30k", DownPayment: "none yet"}
		assert.True(t, engine.Explain(p, &v).Affordability.Applied)
	})

	t.Run("bad loan term falls back to 60 months", func(t *testing.T) {
		bad := &models.UserProfile{AnnualIncome: "50k_75k", DownPayment: "1000", LoanTermPreference: "soon"}
		sixty := &models.UserProfile{AnnualIncome: "50k_75k", DownPayment: "1000", LoanTermPreference: "60"}
		assert.Equal(t, engine.Explain(sixty, &v).Affordability, engine.Explain(bad, &v).Affordability)
	})
}

func TestAffordabilityIgnoresOutOfRangeLoanTerm(t *testing.T) {
	engine := scoring.NewEngine()
	v := hybridSedan()
	v.Price = 20000

	huge := &models.UserProfile{AnnualIncome: "over_150k", DownPayment: "$50000", LoanTermPreference: "200000"}
	sixty := &models.UserProfile{AnnualIncome: "over_150k", DownPayment: "$50000", LoanTermPreference: "60"}

	b := engine.Explain(huge, &v)
	assert.False(t, math.IsNaN(b.Score))
	assert.GreaterOrEqual(t, b.Score, 65.0)
	assert.LessOrEqual(t, b.Score, 92.0)
	assert.Equal(t, engine.Explain(sixty, &v).Affordability, b.Affordability)
	assert.NotContains(t, b.Affordability.Notes, "Significantly exceeds budget")

	c := engine.Score(huge, &v)
	assert.False(t, math.IsNaN(c.Score))
}

func TestRankEmptyCatalog(t *testing.T) {
	got := scoring.RankVehicles(&models.UserProfile{UserID: "c"}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = scoring.RankVehicles(&models.UserProfile{UserID: "c"}, []models.Vehicle{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankSortsDescendingAndStable(t *testing.T) {
	p := &models.UserProfile{Priority: "fuel_efficiency", Passengers: "3-4", DriveEnvironment: "city"}

	first := hybridSedan()
	first.Image = "first"
	second := first
	second.Image = "second"
	third := first
	third.Image = "third"

	catalog := []models.Vehicle{gasTruck(), first, second, third}
	results := scoring.NewEngine().Rank(p, catalog)

	require.Len(t, results, len(catalog))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}

	var order []string
	for _, r := range results {
		if r.Vehicle.Name == first.Name {
			order = append(order, r.Vehicle.Image)
		}
	}
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, "Tacoma", results[len(results)-1].Vehicle.Name)
}

func TestRankWithoutJitterKeepsCatalogOrderOnTies(t *testing.T) {
	engine := scoring.NewEngine(scoring.WithJitter(false))
	a := models.Vehicle{ID: 1, Name: "A", Price: 20000}
	b := models.Vehicle{ID: 2, Name: "B", Price: 20000}
	c := models.Vehicle{ID: 3, Name: "C", Price: 20000}

	results := engine.Rank(&models.UserProfile{}, []models.Vehicle{c, a, b})
	require.Len(t, results, 3)
	assert.Equal(t, "C", results[0].Vehicle.Name)
	assert.Equal(t, "A", results[1].Vehicle.Name)
	assert.Equal(t, "B", results[2].Vehicle.Name)
}

func TestJitterDependsOnlyOnVehicle(t *testing.T) {
	engine := scoring.NewEngine()
	v := hybridSedan()

	j1 := engine.Explain(&models.UserProfile{}, &v).Jitter
	j2 := engine.Explain(&models.UserProfile{Priority: "safety", Passengers: "7+"}, &v).Jitter
	assert.Equal(t, j1, j2)
	assert.GreaterOrEqual(t, j1, -scoring.JitterSpan/2)
	assert.Less(t, j1, scoring.JitterSpan/2)

	// (101*7 + 5*3 + 2*5 + 0 + 5*2 + 5) % 100 = 47
	assert.InDelta(t, -0.15, j1, 1e-9)

	noJitter := scoring.NewEngine(scoring.WithJitter(false))
	assert.Equal(t, 0.0, noJitter.Explain(&models.UserProfile{}, &v).Jitter)
}

func TestExplanationUsesFirstTwoNotes(t *testing.T) {
	engine := scoring.NewEngine()
	v := hybridSedan()
	p := &models.UserProfile{
		Priority:           "fuel_efficiency",
		Passengers:         "1-2",
		DriveEnvironment:   "city",
		FuelPreference:     "hybrid",
		BodyTypePreference: "sedan",
	}

	b := engine.Explain(p, &v)
	require.GreaterOrEqual(t, len(b.Notes()), 4)
	assert.Equal(t, b.Notes()[0]+", "+b.Notes()[1], b.Explanation())
	assert.Equal(t, "Excellent fuel economy (52 MPG)", b.Notes()[0])
	assert.Equal(t, "Spacious with extra seating capacity", b.Notes()[1])
}
