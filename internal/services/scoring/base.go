package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"vehicle-match-engine/internal/models"
)

// Vehicle-only baseline.
const (
	BaselineScore = 38.0

	premiumPriceThreshold = 40000
	premiumPriceBonus     = 5.0
	midPriceThreshold     = 30000
	midPriceBonus         = 2.5

	hybridBonus = 3.0
	evBonus     = 4.0

	topTrimBonus = 1.5
	midTrimBonus = 0.8

	currentYear      = 2025
	currentYearBonus = 0.3
	lastYear         = 2024
	lastYearBonus    = 0.1

	perFeatureBonus = 0.05
	maxFeatureBonus = 1.2
)

// Identity jitter spreads scores over [-JitterSpan/2, +JitterSpan/2].
const JitterSpan = 5.0

// baseScore biases toward premium, electrified, well-equipped inventory
// so vehicles stay distinguishable without any profile signal.
func baseScore(v *models.Vehicle) float64 {
	score := BaselineScore

	switch {
	case v.Price > premiumPriceThreshold:
		score += premiumPriceBonus
	case v.Price > midPriceThreshold:
		score += midPriceBonus
	}

	switch {
	case strings.Contains(string(v.FuelType), "Hybrid"):
		score += hybridBonus
	case v.FuelType == models.FuelTypeEV:
		score += evBonus
	}

	switch {
	case strings.Contains(v.Trim, "Limited"), strings.Contains(v.Trim, "Platinum"):
		score += topTrimBonus
	case strings.Contains(v.Trim, "XLE"), strings.Contains(v.Trim, "XSE"):
		score += midTrimBonus
	}

	switch {
	case v.Year >= currentYear:
		score += currentYearBonus
	case v.Year >= lastYear:
		score += lastYearBonus
	}

	score += math.Min(float64(len(v.Features))*perFeatureBonus, maxFeatureBonus)
	return score
}

// jitter is a pure function of vehicle identity, never of the profile.
func jitter(v *models.Vehicle) float64 {
	h := v.ID*7 +
		utf8.RuneCountInString(v.Name)*3 +
		utf8.RuneCountInString(v.Trim)*5 +
		v.Price%100 +
		v.SeatCount()*2 +
		v.Year%10
	h %= 100
	if h < 0 {
		h += 100
	}
	return float64(h)/100*JitterSpan - JitterSpan/2
}
