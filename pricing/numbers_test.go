package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloatOrZero(t *testing.T) {
	assert.Equal(t, 12.5, ParseFloatOrZero("12.5"))
	assert.Equal(t, 12.5, ParseFloatOrZero("  12.5 "))
	assert.Zero(t, ParseFloatOrZero(""))
	assert.Zero(t, ParseFloatOrZero("abc"))
	assert.Zero(t, ParseFloatOrZero("NaN"))
	assert.Zero(t, ParseFloatOrZero("+Inf"))
}

func TestParseIntOrZero(t *testing.T) {
	assert.Equal(t, 42, ParseIntOrZero("42"))
	assert.Zero(t, ParseIntOrZero(""))
	assert.Zero(t, ParseIntOrZero("4.2"))
}

func TestTotalLaborMinutes(t *testing.T) {
	// Hours set: minutes is a remainder.
	assert.Equal(t, 90.0, TotalLaborMinutes(1, 30))
	// No hours: minutes is the whole amount.
	assert.Equal(t, 200.0, TotalLaborMinutes(0, 200))
}
