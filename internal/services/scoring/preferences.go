package scoring

import (
	"fmt"
	"math"
	"strings"

	"vehicle-match-engine/internal/models"
)

// Direct preference bonuses.
const (
	fuelMatchBonus      = 10.0
	evHybridMatchBonus  = 7.0
	bodyMatchBonus      = 10.0
	maxFeatureWishScore = 12.0
)

func fuelPreference(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	if in.fuelPreference == "" {
		return c
	}

	wanted, known := models.FuelPreferences[in.fuelPreference]
	switch {
	case known && v.FuelType == wanted:
		c.add(fuelMatchBonus, "Matches your fuel preference")
	case in.fuelPreference == "ev" && strings.Contains(string(v.FuelType), "Hybrid"):
		c.add(evHybridMatchBonus, "")
	}
	return c
}

func bodyPreference(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	wanted, known := models.BodyPreferences[in.bodyPreference]
	if !known {
		return c
	}
	if v.BodyType == wanted {
		c.add(bodyMatchBonus, fmt.Sprintf("Your preferred %s body type", wanted))
	}
	return c
}

// budget scores the price's position inside or outside the chosen price band.
func budget(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	band, known := models.BudgetBands[in.budgetRange]
	if !known || band.Max <= band.Min {
		return c
	}

	price := float64(v.Price)
	switch {
	case price >= band.Min && price <= band.Max:
		position := (price - band.Min) / (band.Max - band.Min)
		c.add(12-math.Abs(position-0.5)*3.5, "Within your budget range")
	case price < band.Min:
		c.add(9+price/band.Min*4, "Below your budget")
	default:
		over := (price - band.Max) / band.Max
		switch {
		case over <= 0.1:
			c.add(4-over*10, "Above your budget")
		case over <= 0.2:
			c.add(-(over-0.1)*20, "Above your budget")
		default:
			c.add(-(2 + (over-0.2)*15), "Above your budget")
		}
	}
	return c
}

// featureMatcher decides whether a vehicle satisfies one wished-for feature.
type featureMatcher struct {
	triggers []string
	matches  func(v *models.Vehicle, lowered []string) bool
}

func anyLowered(keywords ...string) func(*models.Vehicle, []string) bool {
	return func(_ *models.Vehicle, lowered []string) bool {
		for _, f := range lowered {
			if containsAny(f, keywords...) {
				return true
			}
		}
		return false
	}
}

// featureMatchers are tried in order; the first whose trigger appears in the wish decides.
var featureMatchers = []featureMatcher{
	{triggers: []string{"carplay", "android"}, matches: anyLowered("carplay", "android", "smartphone")},
	{triggers: []string{"safety"}, matches: anyLowered("safety", "sense", "assist")},
	{triggers: []string{"audio", "premium"}, matches: anyLowered("audio", "hifi", "sound")},
	{triggers: []string{"leather"}, matches: anyLowered("leather", "alcantara")},
	{triggers: []string{"heated", "ventilated"}, matches: anyLowered("heated", "ventilated")},
	{triggers: []string{"sunroof", "moonroof"}, matches: anyLowered("sunroof", "moonroof")},
	{triggers: []string{"wheel drive", "awd"}, matches: func(v *models.Vehicle, _ []string) bool {
		return v.HasAllWheelTraction()
	}},
	{triggers: []string{"wireless"}, matches: anyLowered("wireless", "qi")},
	{triggers: []string{"touchscreen", "display"}, matches: anyLowered("display", "screen", "touchscreen")},
	{triggers: []string{"performance"}, matches: anyLowered("hp", "torque", "sport", "turbo")},
	{triggers: []string{"smart key"}, matches: anyLowered("smart key", "keyless")},
}

func wishSatisfied(wish string, v *models.Vehicle, lowered []string) bool {
	for _, m := range featureMatchers {
		if containsAny(wish, m.triggers...) {
			return m.matches(v, lowered)
		}
	}
	return anyLowered(wish)(v, lowered)
}

// featureWishes awards a share of maxFeatureWishScore for each wished-for feature present.
func featureWishes(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	if len(in.desiredFeatures) == 0 {
		return c
	}

	lowered := make([]string, len(v.Features))
	for i, f := range v.Features {
		lowered[i] = strings.ToLower(f)
	}

	matched := 0
	for _, wish := range in.desiredFeatures {
		if wishSatisfied(strings.ToLower(strings.TrimSpace(wish)), v, lowered) {
			matched++
		}
	}

	total := len(in.desiredFeatures)
	note := ""
	if matched > 0 {
		note = fmt.Sprintf("%d of %d desired features", matched, total)
	}
	c.add(float64(matched)/float64(total)*maxFeatureWishScore, note)
	return c
}
