package pricing

import (
	"math"
	"strconv"
	"strings"
)

// The engine is routinely called with partially edited draft input, so every
// numeric conversion falls back to zero instead of failing the computation.

// ParseFloatOrZero parses a possibly empty or malformed decimal string.
func ParseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

// ParseIntOrZero parses a possibly empty or malformed integer string.
func ParseIntOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// TotalLaborMinutes combines the split hours/minutes fields of a material.
// When hours are set the minutes field is a remainder, otherwise minutes is
// the full amount.
func TotalLaborMinutes(hours, minutes float64) float64 {
	if hours > 0 {
		return hours*60 + minutes
	}
	return minutes
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// safeDiv divides and returns 0 whenever the denominator is not positive.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// clampPercent clamps a percentage into [0, 100].
func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
