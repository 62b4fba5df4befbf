package scoring

import (
	"strconv"
	"strings"
)

// Keyword sets matched case-insensitively against vehicle feature strings.
var (
	technologyKeywords = []string{
		"safety", "carplay", "android", "screen", "infotainment", "wireless", "camera", "assist",
		"display", "audio", "multimedia", "smartphone", "bluetooth", "navigation", "touchscreen",
	}

	comfortKeywords = []string{
		"leather", "heated", "ventilated", "climate", "seat", "power", "memory", "lumbar", "adjustable",
	}

	// the comfort tier bonus also counts trim materials
	comfortCountKeywords = append(append([]string{}, comfortKeywords...), "alcantara", "steering")

	performanceKeywords = []string{
		"hp", "torque", "turbo", "sport", "performance", "track", "launch", "paddle", "manual",
	}

	safetyKeywords = []string{
		"safety", "sense", "assist", "brake", "blind", "collision", "pedestrian", "lane",
		"adaptive", "cruise", "airbag", "stability",
	}
)

// containsAny reports whether s contains any of the keywords. s must already be lower case.
func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// countFeatures counts features containing any keyword.
func countFeatures(features []string, keywords []string) int {
	n := 0
	for _, f := range features {
		if containsAny(strings.ToLower(f), keywords...) {
			n++
		}
	}
	return n
}

// anyFeature reports whether at least one feature contains a keyword.
func anyFeature(features []string, keywords ...string) bool {
	for _, f := range features {
		if containsAny(strings.ToLower(f), keywords...) {
			return true
		}
	}
	return false
}

// formatNumber prints a number the way it reads on a window sticker: 53, 40.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
