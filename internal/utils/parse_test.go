package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"$5,000", 5000, true},
		{"5000 USD", 5000, true},
		{"12.5k", 12.5, true},
		{"none", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadingInt(t *testing.T) {
	n, ok := LeadingInt("7+")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = LeadingInt(" 3-4")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = LeadingInt("many")
	assert.False(t, ok)
}

func TestParseInt(t *testing.T) {
	n, err := parseInt("1,200")
	assert.NoError(t, err)
	assert.Equal(t, 1200, n)

	n, err = parseInt("60.0")
	assert.NoError(t, err)
	assert.Equal(t, 60, n)

	_, err = parseInt("sixty")
	assert.Error(t, err)
}

func TestHash31(t *testing.T) {
	assert.Equal(t, int64(0), Hash31(""))
	assert.Equal(t, int64(97), Hash31("a"))
	assert.Equal(t, int64(3105), Hash31("ab"))
	assert.Equal(t, Hash31("RAV4-XLE-2025"), Hash31("RAV4-XLE-2025"))
	assert.GreaterOrEqual(t, Hash31("a very long vehicle name that overflows int32"), int64(0))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel("DEBUG").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
}
