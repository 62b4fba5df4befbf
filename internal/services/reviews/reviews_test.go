package reviews_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-match-engine/internal/services/reviews"
)

const export = `[
  {
    "car_model": "Toyota Camry",
    "year": "2024",
    "strengths": "['Fuel economy', 'Comfort']",
    "weaknesses": "['Road noise']",
    "rating": "4.8 out of 5 stars",
    "full_description": "Great reliability and comfort with good fuel efficiency overall",
    "word_count_full_description": 9
  },
  {
    "car_model": "Camry Hybrid",
    "year": 2023,
    "strengths": "Quiet cabin",
    "weaknesses": "empty",
    "rating": 4.2,
    "full_description": "empty"
  },
  {
    "car_model": "camry",
    "strengths": "['Comfort']",
    "weaknesses": "",
    "rating": null,
    "full_description": "Comfort and safety first"
  },
  {
    "car_model": "Corolla",
    "strengths": "['Price']",
    "rating": "3.9 out of 5 stars",
    "full_description": "Cheap and slow"
  }
]`

func TestTextSentiment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		score     float64
		sentiment string
	}{
		{"empty", "", 50, reviews.Neutral},
		{"placeholder", "empty", 50, reviews.Neutral},
		{"positive clamps at 100", "Great car, very reliable and quiet", 100, reviews.Positive},
		{"negative", "The ride is rough and noisy on a long trip home today", 50 - 2.0/12*200, reviews.Negative},
		{"balanced", "good but small", 50, reviews.Neutral},
		{"whole words only", "goodness everywhere", 50, reviews.Neutral},
		{"hyphenated keyword", "well-built truck", 100, reviews.Positive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, sentiment := reviews.TextSentiment(tt.text)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.sentiment, sentiment)
		})
	}
}

func TestParseRating(t *testing.T) {
	assert.InDelta(t, 4.8, reviews.ParseRating("4.8 out of 5 stars"), 1e-9)
	assert.InDelta(t, 4.0, reviews.ParseRating("Rated 4 stars"), 1e-9)
	assert.Zero(t, reviews.ParseRating("n/a"))
}

func TestMatches(t *testing.T) {
	assert.True(t, reviews.Matches("Camry XSE", "Toyota Camry"))
	assert.True(t, reviews.Matches("Grand Highlander", "Highlander"))
	assert.True(t, reviews.Matches("RAV4 Prime", "RAV4  Hybrid"))
	assert.False(t, reviews.Matches("Tacoma", "Tundra"))
	assert.False(t, reviews.Matches("", "Camry"))
	assert.False(t, reviews.Matches("Camry", " "))
}

func TestAnalyze(t *testing.T) {
	parsed, err := reviews.Parse([]byte(export))
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	a := reviews.Analyze("Camry", parsed)
	require.NotNil(t, a)

	assert.Equal(t, 3, a.ReviewCount)
	// (94.4 + 50 + 50) / 3 rounds to 65 but the label uses the unrounded mean
	assert.Equal(t, 65, a.Score)
	assert.Equal(t, reviews.Neutral, a.Sentiment)
	assert.Equal(t, []string{"Fuel economy", "Comfort", "Quiet cabin"}, a.Strengths)
	assert.Equal(t, []string{"Road noise"}, a.Weaknesses)
	assert.Equal(t, []string{"comfort", "reliability", "fuel efficiency", "safety"}, a.Themes)
	assert.InDelta(t, 4.5, a.AverageRating, 1e-9)
	assert.Equal(t, "4.5 out of 5 stars", a.Rating)

	assert.Nil(t, reviews.Analyze("RAV4", parsed))
}

func TestAnalyzeCapsInsights(t *testing.T) {
	var many []reviews.Review
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "a"} {
		many = append(many, reviews.Review{
			CarModel:    "Tundra",
			Strengths:   s,
			Description: "performance power design value handling space",
		})
	}

	a := reviews.Analyze("Tundra", many)
	require.NotNil(t, a)
	assert.Len(t, a.Strengths, reviews.InsightLimit)
	assert.Len(t, a.Themes, reviews.InsightLimit)
	assert.Equal(t, reviews.NoRating, a.Rating)
	assert.Zero(t, a.AverageRating)
	assert.NotNil(t, a.Weaknesses)
}

func TestParseRejectsMalformedExport(t *testing.T) {
	_, err := reviews.Parse([]byte(`{"car_model": "Camry"}`))
	assert.Error(t, err)

	parsed, err := reviews.Parse([]byte("  "))
	assert.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	lib, err := reviews.Open(filepath.Join(dir, "missing.json"), nil)
	require.NoError(t, err)
	assert.Zero(t, lib.Len())
	assert.Nil(t, lib.Analyze("Camry"))

	path := filepath.Join(dir, "reviews.json")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	lib, err = reviews.Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, lib.Len())
	require.NotNil(t, lib.Analyze("Corolla LE"))
	assert.Equal(t, reviews.Negative, lib.Analyze("Corolla LE").Sentiment)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = reviews.Open(path, nil)
	assert.Error(t, err)

	var none *reviews.Library
	assert.Zero(t, none.Len())
	assert.Nil(t, none.Analyze("Camry"))
}
