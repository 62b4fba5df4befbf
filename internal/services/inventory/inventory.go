// Package inventory filters a catalog the way the inventory view does and ranks what is left.
package inventory

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/scoring"
)

const (
	// MaxPrice is the upper end of the price slider.
	MaxPrice = 80000
	// BudgetBuffer widens a stated budget so slightly pricier vehicles still show.
	BudgetBuffer = 1.2
)

// Filters narrows a catalog. Empty type lists match everything.
type Filters struct {
	PriceMin  int               `json:"priceMin"`
	PriceMax  int               `json:"priceMax"`
	FuelTypes []models.FuelType `json:"fuelTypes,omitempty"`
	BodyTypes []models.BodyType `json:"bodyTypes,omitempty"`
}

// DefaultFilters spans the whole price slider with no type restriction.
func DefaultFilters() Filters {
	return Filters{PriceMin: 0, PriceMax: MaxPrice}
}

var quizBodyTypes = map[string]models.BodyType{
	"Sedan":     models.BodyTypeSedan,
	"SUV":       models.BodyTypeSUV,
	"Truck":     models.BodyTypeTruck,
	"Minivan":   models.BodyTypeMinivan,
	"Coupe":     models.BodyTypeCoupe,
	"Hatchback": models.BodyTypeHatchback,
}

var quizFuelTypes = map[string]models.FuelType{
	"Gas":            models.FuelTypeGas,
	"Hybrid":         models.FuelTypeHybrid,
	"Electric":       models.FuelTypeEV,
	"Plug-in Hybrid": models.FuelTypePlugInHybrid,
}

// FiltersFromQuery reads repeated fuelType and bodyType parameters, the quiz's
// vehicleType and fuelPreference labels, and maxBudget.
func FiltersFromQuery(q url.Values) Filters {
	f := DefaultFilters()

	for _, ft := range q["fuelType"] {
		f.addFuel(models.NormalizeFuelType(ft))
	}
	for _, bt := range q["bodyType"] {
		f.addBody(models.NormalizeBodyType(bt))
	}

	if bt, ok := quizBodyTypes[q.Get("vehicleType")]; ok {
		f.addBody(bt)
	}
	if ft, ok := quizFuelTypes[q.Get("fuelPreference")]; ok {
		f.addFuel(ft)
	}

	if raw := q.Get("maxBudget"); raw != "" {
		if budget, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && budget > 0 {
			f.PriceMin = 0
			f.PriceMax = min(int(math.Floor(float64(budget)*BudgetBuffer)), MaxPrice)
		}
	}
	return f
}

func (f *Filters) addFuel(ft models.FuelType) {
	for _, existing := range f.FuelTypes {
		if existing == ft {
			return
		}
	}
	f.FuelTypes = append(f.FuelTypes, ft)
}

func (f *Filters) addBody(bt models.BodyType) {
	for _, existing := range f.BodyTypes {
		if existing == bt {
			return
		}
	}
	f.BodyTypes = append(f.BodyTypes, bt)
}

// Matches reports whether v passes every filter.
func (f Filters) Matches(v *models.Vehicle) bool {
	if v.Price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && v.Price > f.PriceMax {
		return false
	}
	if len(f.FuelTypes) > 0 && !containsFuel(f.FuelTypes, v.FuelType) {
		return false
	}
	if len(f.BodyTypes) > 0 && !containsBody(f.BodyTypes, v.BodyType) {
		return false
	}
	return true
}

// Apply returns the vehicles that match f, in catalog order.
func Apply(vehicles []models.Vehicle, f Filters) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if f.Matches(&vehicles[i]) {
			out = append(out, vehicles[i])
		}
	}
	return out
}

// Ranked filters the catalog, then ranks the remainder with engine.
func Ranked(engine *scoring.Engine, profile *models.UserProfile, vehicles []models.Vehicle, f Filters) []models.CompatibilityResult {
	return engine.Rank(profile, Apply(vehicles, f))
}

// Top returns at most n results. n <= 0 keeps all of them.
func Top(results []models.CompatibilityResult, n int) []models.CompatibilityResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

func containsFuel(list []models.FuelType, ft models.FuelType) bool {
	for _, v := range list {
		if v == ft {
			return true
		}
	}
	return false
}

func containsBody(list []models.BodyType, bt models.BodyType) bool {
	for _, v := range list {
		if v == bt {
			return true
		}
	}
	return false
}
