// Package quiz converts shopping quiz answers into a partial profile.
package quiz

import (
	"strings"

	"vehicle-match-engine/internal/models"
)

// NoPreference is the fuel answer that leaves fuel_preference unset.
const NoPreference = "No Preference"

// Answers are the labels selected in the quiz.
type Answers struct {
	VehicleType      string   `json:"vehicleType,omitempty"`
	VehicleUsage     string   `json:"vehicleUsage,omitempty"`
	TopPriorities    []string `json:"topPriorities,omitempty"`
	Features         []string `json:"features,omitempty"`
	FuelPreference   string   `json:"fuelPreference,omitempty"`
	PassengerSize    string   `json:"passengerSize,omitempty"`
	PaymentPlan      string   `json:"paymentPlan,omitempty"`
	Budget           string   `json:"budget,omitempty"`
	DrivingStyle     string   `json:"drivingStyle,omitempty"`
	MustHaveFeatures []string `json:"mustHaveFeatures,omitempty"`
}

var bodyTypeLabels = map[string]string{
	"Sedan":     "sedan",
	"SUV":       "suv",
	"Truck":     "truck",
	"Minivan":   "minivan",
	"Coupe":     "coupe",
	"Hatchback": "hatchback",
}

var fuelLabels = map[string]string{
	"Gas":            "gas",
	"Hybrid":         "hybrid",
	"Plug-in Hybrid": "plug_in_hybrid",
	"Electric":       "ev",
}

var budgetLabels = map[string]string{
	"Under $25,000":     "under_25k",
	"$25,000 - $35,000": "25k_35k",
	"$35,000 - $45,000": "35k_45k",
	"$45,000 - $60,000": "45k_60k",
	"Over $60,000":      "over_60k",
}

var passengerLabels = map[string]string{
	"1-2 People": "1-2",
	"3-4 People": "3-4",
	"5-6 People": "5-6",
	"7+ People":  "7+",
}

var priorityLabels = map[string]models.Priority{
	"Fuel Efficiency": models.PriorityFuelEfficiency,
	"Safety":          models.PrioritySafety,
	"Technology":      models.PriorityTechnology,
	"Comfort":         models.PriorityComfort,
	"Performance":     models.PriorityPower,
	"Cargo Space":     models.PriorityCargoSpace,
	"Eco-Friendly":    models.PriorityFuelEfficiency,
}

// ToProfile maps answers onto profile fields. Unknown labels never fail: body and fuel
// labels pass through lower-cased, an unknown budget stays empty and an unknown first
// priority becomes comfort.
func ToProfile(a Answers) models.UserProfile {
	var p models.UserProfile

	if a.VehicleType != "" {
		p.BodyTypePreference = lookup(bodyTypeLabels, a.VehicleType)
	}

	if a.FuelPreference != "" && a.FuelPreference != NoPreference {
		p.FuelPreference = lookup(fuelLabels, a.FuelPreference)
	}

	if a.Budget != "" {
		p.BudgetRange = budgetLabels[a.Budget]
	}

	if a.PassengerSize != "" {
		if v, ok := passengerLabels[a.PassengerSize]; ok {
			p.Passengers = v
		} else {
			p.Passengers = a.PassengerSize
		}
	}

	if len(a.TopPriorities) > 0 {
		priority, ok := priorityLabels[a.TopPriorities[0]]
		if !ok {
			priority = models.PriorityComfort
		}
		p.Priority = string(priority)
	}

	p.DriveEnvironment, p.DailyDrive = drivingPattern(a.DrivingStyle, a.VehicleUsage)

	if len(a.Features) > 0 {
		p.SelectedFeatures = append(p.SelectedFeatures, a.Features...)
	}
	if len(a.MustHaveFeatures) > 0 {
		p.MustHaveFeatures = append([]string(nil), a.MustHaveFeatures...)
		p.SelectedFeatures = append(p.SelectedFeatures, a.MustHaveFeatures...)
	}

	return p
}

// drivingPattern derives environment and daily distance from the driving style,
// then from the intended usage.
func drivingPattern(style, usage string) (environment, daily string) {
	switch {
	case strings.Contains(style, "City"):
		return "city", "short"
	case strings.Contains(style, "Highway"):
		return "highway", "long"
	case strings.Contains(style, "Mixed"):
		return "mixed", "medium"
	case strings.Contains(style, "Off-Road"):
		return "off_road", "medium"
	}

	if usage == "" {
		return "", ""
	}
	switch {
	case strings.Contains(usage, "Commute"):
		return "city", "short"
	case strings.Contains(usage, "Adventure"), strings.Contains(usage, "Off-Road"):
		return "off_road", "medium"
	}
	return "mixed", "medium"
}

func lookup(labels map[string]string, label string) string {
	if v, ok := labels[label]; ok {
		return v
	}
	return strings.ToLower(label)
}
