package scoring

import (
	"strings"

	"vehicle-match-engine/internal/models"
)

// explanationNotes is how many rule notes make it into the explanation.
const explanationNotes = 2

// Contribution is what one rule added to the score.
// Applied is false when the rule's inputs were absent and it was skipped.
type Contribution struct {
	Applied bool     `json:"applied"`
	Points  float64  `json:"points"`
	Notes   []string `json:"notes,omitempty"`
}

func (c *Contribution) add(points float64, note string) {
	c.Applied = true
	c.Points += points
	if note != "" {
		c.Notes = append(c.Notes, note)
	}
}

// Breakdown shows per-rule contributions for one profile and vehicle.
type Breakdown struct {
	Base           float64      `json:"base"`
	Affordability  Contribution `json:"affordability"`
	Efficiency     Contribution `json:"efficiency"`
	Passengers     Contribution `json:"passengers"`
	Environment    Contribution `json:"environment"`
	Priority       Contribution `json:"priority"`
	FuelPreference Contribution `json:"fuel_preference"`
	BodyPreference Contribution `json:"body_preference"`
	Budget         Contribution `json:"budget"`
	Features       Contribution `json:"features"`
	Jitter         float64      `json:"jitter"`
	Raw            float64      `json:"raw"`
	Score          float64      `json:"score"`
}

// rules returns the rule contributions in evaluation order.
func (b *Breakdown) rules() []*Contribution {
	return []*Contribution{
		&b.Affordability,
		&b.Efficiency,
		&b.Passengers,
		&b.Environment,
		&b.Priority,
		&b.FuelPreference,
		&b.BodyPreference,
		&b.Budget,
		&b.Features,
	}
}

func (b *Breakdown) total() float64 {
	sum := b.Base + b.Jitter
	for _, c := range b.rules() {
		sum += c.Points
	}
	return sum
}

// Notes lists every note produced, in rule order.
func (b *Breakdown) Notes() []string {
	var notes []string
	for _, c := range b.rules() {
		notes = append(notes, c.Notes...)
	}
	return notes
}

// Explanation joins the first notes, or falls back to a generic sentence.
func (b *Breakdown) Explanation() string {
	notes := b.Notes()
	if len(notes) == 0 {
		return models.DefaultExplanation
	}
	if len(notes) > explanationNotes {
		notes = notes[:explanationNotes]
	}
	return strings.Join(notes, ", ")
}
