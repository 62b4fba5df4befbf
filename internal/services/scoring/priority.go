package scoring

import (
	"fmt"
	"math"
	"strings"

	"vehicle-match-engine/internal/models"
)

// premiumTrimMarkers mark trims that count as premium for the comfort priority.
var premiumTrimMarkers = []string{"XLE", "Platinum", "Limited", "Premium", "LE"}

// priority applies exactly one sub-rule keyed by the shopper's top priority.
// Unknown priorities add nothing.
func priority(in *inputs, v *models.Vehicle) Contribution {
	switch in.priority {
	case models.PriorityFuelEfficiency:
		return fuelEfficiencyPriority(v)
	case models.PriorityCargoSpace:
		return cargoPriority(v)
	case models.PriorityTechnology:
		return technologyPriority(v)
	case models.PriorityComfort:
		return comfortPriority(v)
	case models.PriorityPower, models.PriorityPerformance:
		return performancePriority(v)
	case models.PrioritySafety:
		return safetyPriority(v)
	}
	return Contribution{}
}

func fuelEfficiencyPriority(v *models.Vehicle) Contribution {
	var c Contribution
	switch v.FuelType {
	case models.FuelTypeEV:
		c.add(14+1.5, "Fully electric powertrain")
	case models.FuelTypePlugInHybrid:
		c.add(14+1.2, "Plug-in hybrid efficiency")
	case models.FuelTypeHybrid:
		c.add(14, "Eco-friendly hybrid powertrain")
	default:
		c.add(5, "")
	}
	return c
}

func cargoPriority(v *models.Vehicle) Contribution {
	var c Contribution
	cargo, ok := v.CargoCubicFeet()
	if !ok {
		return c
	}

	size := formatNumber(cargo)
	switch {
	case cargo > 40:
		c.add(15+(cargo-40)*0.1, fmt.Sprintf("Very spacious cargo area (%s cu ft)", size))
	case cargo > 30:
		c.add(14+(cargo-30)*0.25, fmt.Sprintf("Spacious cargo area (%s cu ft)", size))
	case cargo > 20:
		c.add(11+(cargo-20)*0.25, fmt.Sprintf("Good cargo space (%s cu ft)", size))
	case cargo > 15:
		c.add(7+(cargo-15)*0.15, fmt.Sprintf("Moderate cargo space (%s cu ft)", size))
	default:
		c.add(4+cargo/15, "")
	}
	return c
}

func technologyPriority(v *models.Vehicle) Contribution {
	var c Contribution
	n := float64(countFeatures(v.Features, technologyKeywords))

	switch {
	case n >= 8:
		c.add(15+math.Min((n-8)*0.25, 1.5), "Advanced technology suite")
	case n >= 5:
		c.add(13+(n-5)*0.4, "Comprehensive technology features")
	case n >= 3:
		c.add(11+(n-3)*0.8, "Good technology features")
	case n > 0:
		c.add(8+(n-1)*0.4, "Standard technology features")
	default:
		c.add(3, "")
	}
	return c
}

func comfortPriority(v *models.Vehicle) Contribution {
	var c Contribution
	premium := false
	for _, marker := range premiumTrimMarkers {
		if strings.Contains(v.Trim, marker) {
			premium = true
			break
		}
	}
	comfortable := anyFeature(v.Features, comfortKeywords...)
	n := float64(countFeatures(v.Features, comfortCountKeywords))

	switch {
	case premium && comfortable:
		c.add(15+math.Min(n*0.4, 1.5), "Premium comfort features")
	case premium || comfortable:
		c.add(12+math.Min(n*0.25, 1.5), "Enhanced comfort features")
	default:
		c.add(7, "Standard comfort features")
	}
	return c
}

func performancePriority(v *models.Vehicle) Contribution {
	var c Contribution
	name := v.Name
	performanceModel := strings.Contains(name, "GR") || strings.Contains(name, "TRD") ||
		strings.Contains(name, "Prime") || strings.Contains(name, "Supra") ||
		strings.Contains(name, "86") || strings.Contains(v.Trim, "Sport")
	performanceKit := anyFeature(v.Features, performanceKeywords...)

	if !performanceModel && !performanceKit {
		c.add(6, "")
		return c
	}

	points := 14.0
	switch {
	case strings.Contains(name, "Supra"):
		points += 2
	case strings.Contains(name, "86"):
		points += 1.8
	case strings.Contains(name, "GR"):
		points += 1.5
	case strings.Contains(name, "TRD"):
		points += 1.2
	}
	if performanceKit {
		points++
	}
	c.add(points, "Performance-oriented model")
	return c
}

func safetyPriority(v *models.Vehicle) Contribution {
	var c Contribution
	n := float64(countFeatures(v.Features, safetyKeywords))

	switch {
	case n >= 6:
		c.add(15+math.Min((n-6)*0.25, 1.5), "Comprehensive safety features")
	case n >= 4:
		c.add(13+(n-4)*0.4, "Advanced safety features")
	case n >= 2:
		c.add(11+(n-2)*0.8, "Good safety features")
	default:
		c.add(9, "")
	}
	return c
}
