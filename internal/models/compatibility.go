package models

// Score bounds for a compatibility score.
const (
	MinCompatibilityScore = 65.0
	MaxCompatibilityScore = 92.0
)

// DefaultExplanation is used when no rule produced a note.
const DefaultExplanation = "Good overall match for your needs"

// Compatibility is the score and short explanation for one profile and vehicle.
type Compatibility struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// CompatibilityResult pairs a vehicle with its compatibility for ranking.
type CompatibilityResult struct {
	Vehicle     Vehicle `json:"vehicle"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}
