package utils

import (
	"math"
	"strconv"
	"strings"
)

// SafeInt converts a loosely typed quantity into an int.
// Empty values and the literal "None" yield def. The value is parsed as a
// float and truncated toward zero, so "3.0" and "3.9" both become 3.
// Anything unparsable, non-finite or outside the int64 range yields def.
func SafeInt(value string, def int) int {
	if isEmptyNumeric(value) {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int(f)
}

// SafeFloat converts a loosely typed money value into a float64.
// A decimal comma is accepted ("1,5" is 1.5). Empty, "None", unparsable and
// non-finite values yield def.
func SafeFloat(value string, def float64) float64 {
	if isEmptyNumeric(value) {
		return def
	}
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func isEmptyNumeric(value string) bool {
	return value == "" || value == noneLiteral
}
