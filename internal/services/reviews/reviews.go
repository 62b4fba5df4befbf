// Package reviews summarizes owner reviews for a vehicle: a keyword sentiment
// score, the most cited strengths and weaknesses, recurring themes and the
// average star rating.
package reviews

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vehicle-match-engine/internal/utils"
)

// Sentiment labels.
const (
	Positive = "positive"
	Neutral  = "neutral"
	Negative = "negative"
)

const (
	// NeutralScore is the sentiment of an empty description.
	NeutralScore = 50.0
	// PositiveThreshold and NegativeThreshold bound the neutral band.
	PositiveThreshold = 65.0
	NegativeThreshold = 35.0
	// InsightLimit caps strengths, weaknesses and themes.
	InsightLimit = 5
	// NoRating is shown when no review carries a usable rating.
	NoRating = "Rating not available"

	// placeholder marks an absent field in the review export.
	placeholder = "empty"
)

var (
	positiveWords = []string{
		"excellent", "great", "good", "amazing", "wonderful", "fantastic", "outstanding",
		"reliable", "comfortable", "powerful", "efficient", "smooth", "quiet", "spacious",
		"well-built", "durable", "safe", "advanced", "premium", "quality", "impressive",
		"versatile", "capable", "refined", "stylish", "modern", "innovative",
	}
	negativeWords = []string{
		"poor", "bad", "terrible", "awful", "disappointing", "cramped", "uncomfortable",
		"noisy", "rough", "cheap", "flimsy", "unreliable", "expensive", "limited",
		"lacks", "missing", "weak", "slow", "boring", "outdated", "tight", "small",
	}
	themeKeywords = []string{
		"reliability", "comfort", "performance", "fuel efficiency", "safety",
		"technology", "space", "quality", "value", "handling", "power", "design",
	}

	positivePatterns = wordPatterns(positiveWords)
	negativePatterns = wordPatterns(negativeWords)

	ratingPattern = regexp.MustCompile(`\d+\.?\d*`)
)

func wordPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return patterns
}

// Review is one owner review as exported by the review scraper.
type Review struct {
	CarModel    string     `json:"car_model"`
	Year        flexString `json:"year"`
	Strengths   string     `json:"strengths"`
	Weaknesses  string     `json:"weaknesses"`
	Rating      flexString `json:"rating"`
	Description string     `json:"full_description"`
	WordCount   int        `json:"word_count_full_description"`
}

// Analysis summarizes the reviews matching one vehicle.
type Analysis struct {
	Sentiment     string   `json:"overallSentiment"`
	Score         int      `json:"sentimentScore"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Themes        []string `json:"commonThemes"`
	AverageRating float64  `json:"averageRating"`
	Rating        string   `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
}

// flexString accepts strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// TextSentiment scores a description from 0 to 100. Every positive keyword
// adds twice its share of the words, every negative keyword takes the same off.
func TextSentiment(text string) (float64, string) {
	if strings.TrimSpace(text) == "" || text == placeholder {
		return NeutralScore, Neutral
	}

	lower := strings.ToLower(text)
	positive := countMatches(positivePatterns, lower)
	negative := countMatches(negativePatterns, lower)
	words := float64(max(len(strings.Fields(text)), 1))

	score := NeutralScore + float64(positive)/words*200 - float64(negative)/words*200
	score = math.Max(0, math.Min(100, score))
	return score, label(score)
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllStringIndex(text, -1))
	}
	return n
}

func label(score float64) string {
	switch {
	case score >= PositiveThreshold:
		return Positive
	case score <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

// ParseRating reads the first number of a rating such as "4.8 out of 5 stars".
func ParseRating(raw string) float64 {
	m := ratingPattern.FindString(raw)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeName lowercases, collapses whitespace and drops a leading make.
func normalizeName(name string) string {
	name = strings.ToLower(strings.Join(strings.Fields(name), " "))
	return strings.TrimPrefix(name, "toyota ")
}

// Matches reports whether a review's model refers to the named vehicle: either
// name contains the other, or both start with the same word.
func Matches(vehicleName, reviewModel string) bool {
	name := normalizeName(vehicleName)
	model := normalizeName(reviewModel)
	if name == "" || model == "" {
		return false
	}
	if strings.Contains(model, name) || strings.Contains(name, model) {
		return true
	}
	return strings.Fields(model)[0] == strings.Fields(name)[0]
}

// splitList reads a strengths or weaknesses field. The export writes lists with
// single quotes; anything that is not a list is kept as one entry.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" || raw == placeholder {
		return nil
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &parsed); err != nil {
		return []string{raw}
	}
	items, ok := parsed.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func uniqueFirst(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, limit)
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Analyze summarizes the reviews that match vehicleName. It returns nil when none match.
func Analyze(vehicleName string, reviews []Review) *Analysis {
	var (
		strengths, weaknesses []string
		sentimentTotal        float64
		ratingTotal           float64
		ratingCount           int
		matched               int
		themeCounts           = make(map[string]int)
		themeOrder            []string
	)

	for _, r := range reviews {
		if !Matches(vehicleName, r.CarModel) {
			continue
		}
		matched++

		strengths = append(strengths, splitList(r.Strengths)...)
		weaknesses = append(weaknesses, splitList(r.Weaknesses)...)

		score, _ := TextSentiment(r.Description)
		sentimentTotal += score

		if raw := string(r.Rating); raw != "" && raw != placeholder {
			if rating := ParseRating(raw); rating > 0 {
				ratingTotal += rating
				ratingCount++
			}
		}

		desc := strings.ToLower(r.Description)
		for _, theme := range themeKeywords {
			if !strings.Contains(desc, theme) {
				continue
			}
			if themeCounts[theme] == 0 {
				themeOrder = append(themeOrder, theme)
			}
			themeCounts[theme]++
		}
	}

	if matched == 0 {
		return nil
	}

	sort.SliceStable(themeOrder, func(i, j int) bool {
		return themeCounts[themeOrder[i]] > themeCounts[themeOrder[j]]
	})
	if len(themeOrder) > InsightLimit {
		themeOrder = themeOrder[:InsightLimit]
	}

	avg := sentimentTotal / float64(matched)
	a := &Analysis{
		Sentiment:   label(avg),
		Score:       int(math.Round(avg)),
		Strengths:   uniqueFirst(strengths, InsightLimit),
		Weaknesses:  uniqueFirst(weaknesses, InsightLimit),
		Themes:      append([]string{}, themeOrder...),
		Rating:      NoRating,
		ReviewCount: matched,
	}
	if ratingCount > 0 {
		a.AverageRating = ratingTotal / float64(ratingCount)
		a.Rating = fmt.Sprintf("%.1f out of 5 stars", a.AverageRating)
	}
	return a
}

// Library holds a loaded review export.
type Library struct {
	reviews []Review
}

// NewLibrary wraps reviews already in memory.
func NewLibrary(reviews []Review) *Library {
	return &Library{reviews: reviews}
}

// Parse decodes a review export: a JSON array of reviews.
func Parse(data []byte) ([]Review, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("\ufeff"))
	if len(data) == 0 {
		return nil, nil
	}
	var reviews []Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("failed to parse reviews: %w", err)
	}
	return reviews, nil
}

// Open loads the review export at path. A missing file gives an empty library.
func Open(path string, logger *zap.Logger) (*Library, error) {
	if logger == nil {
		logger = utils.Named("reviews")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("No review export found", utils.String("path", path))
		return NewLibrary(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	reviews, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded reviews", utils.String("path", path), utils.Int("reviews", len(reviews)))
	return NewLibrary(reviews), nil
}

// Len returns the number of reviews.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.reviews)
}

// Analyze summarizes the library's reviews for vehicleName.
func (l *Library) Analyze(vehicleName string) *Analysis {
	if l == nil {
		return nil
	}
	return Analyze(vehicleName, l.reviews)
}
