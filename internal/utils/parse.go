package utils

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount extracts a numeric amount from free text such as "$5,000" or "5000 USD".
// Only digits and the decimal point are kept; ok is false when nothing usable remains.
func ParseAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// LeadingInt parses the integer prefix of s, e.g. "7+" -> 7 and "3-4" -> 3.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	// Handle float strings (e.g., "60.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// Hash31 is the classic 31-multiplier string hash over 32-bit signed arithmetic.
// It returns the absolute value so callers can use it for ids and buckets.
func Hash31(s string) int64 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
