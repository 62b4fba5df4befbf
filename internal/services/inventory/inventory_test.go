package inventory_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/inventory"
	"vehicle-match-engine/internal/services/scoring"
)

func catalogFixture() []models.Vehicle {
	return []models.Vehicle{
		{ID: 1, Name: "Corolla", Trim: "LE", Price: 22000, BodyType: models.BodyTypeSedan, FuelType: models.FuelTypeGas},
		{ID: 2, Name: "Prius", Trim: "XLE", Price: 32000, BodyType: models.BodyTypeHatchback, FuelType: models.FuelTypeHybrid, MPGCity: 57, MPGHighway: 56},
		{ID: 3, Name: "RAV4", Trim: "Prime", Price: 44000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypePlugInHybrid},
		{ID: 4, Name: "bZ4X", Trim: "Limited", Price: 49000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypeEV},
		{ID: 5, Name: "Sequoia", Trim: "Capstone", Price: 82000, BodyType: models.BodyTypeSUV, FuelType: models.FuelTypeHybrid},
	}
}

func ids(vehicles []models.Vehicle) []int {
	out := make([]int, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, v.ID)
	}
	return out
}

func TestDefaultFilters(t *testing.T) {
	got := inventory.Apply(catalogFixture(), inventory.DefaultFilters())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(got), "price slider tops out at 80k")
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  inventory.Filters
	}{
		{
			name:  "empty",
			query: "",
			want:  inventory.Filters{PriceMin: 0, PriceMax: 80000},
		},
		{
			name:  "repeated params",
			query: "fuelType=Hybrid&fuelType=Electric&fuelType=Hybrid&bodyType=SUV",
			want: inventory.Filters{
				PriceMax:  80000,
				FuelTypes: []models.FuelType{models.FuelTypeHybrid, models.FuelTypeEV},
				BodyTypes: []models.BodyType{models.BodyTypeSUV},
			},
		},
		{
			name:  "quiz labels",
			query: "vehicleType=Minivan&fuelPreference=No+Preference",
			want: inventory.Filters{
				PriceMax:  80000,
				BodyTypes: []models.BodyType{models.BodyTypeMinivan},
			},
		},
		{
			name:  "budget buffer",
			query: "maxBudget=30000",
			want:  inventory.Filters{PriceMax: 36000},
		},
		{
			name:  "budget buffer capped",
			query: "maxBudget=75000",
			want:  inventory.Filters{PriceMax: 80000},
		},
		{
			name:  "bad budget ignored",
			query: "maxBudget=lots",
			want:  inventory.Filters{PriceMax: 80000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inventory.FiltersFromQuery(q))
		})
	}
}

func TestApply(t *testing.T) {
	f := inventory.Filters{
		PriceMin:  30000,
		PriceMax:  50000,
		BodyTypes: []models.BodyType{models.BodyTypeSUV},
	}
	assert.Equal(t, []int{3, 4}, ids(inventory.Apply(catalogFixture(), f)))

	f.FuelTypes = []models.FuelType{models.FuelTypeEV}
	assert.Equal(t, []int{4}, ids(inventory.Apply(catalogFixture(), f)))

	assert.Empty(t, inventory.Apply(nil, f))
}

func TestRanked(t *testing.T) {
	engine := scoring.NewEngine(scoring.WithJitter(false))
	profile := &models.UserProfile{Priority: "fuel_efficiency", FuelPreference: "hybrid"}

	results := inventory.Ranked(engine, profile, catalogFixture(), inventory.DefaultFilters())
	require.Len(t, results, 4)
	assert.Equal(t, 2, results[0].Vehicle.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}

	top := inventory.Top(results, 2)
	assert.Len(t, top, 2)
	assert.Len(t, inventory.Top(results, 0), 4)
	assert.Len(t, inventory.Top(results, 10), 4)
}
