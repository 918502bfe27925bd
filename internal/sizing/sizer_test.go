package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeFixedFractionalRisk(t *testing.T) {
	// equity=100000, risk=1% -> maxRisk=1000; entry=100, stop=8% ->
	// riskPerShare=8 -> qty=125.
	s := NewSizer(100_000, 0.01)
	assert.Equal(t, 125, s.Size(100.0, 0.08))
}

func TestSizeFloorsFraction(t *testing.T) {
	// maxRisk=1000, riskPerShare=300 -> 3.33 shares -> 3.
	s := NewSizer(100_000, 0.01)
	assert.Equal(t, 3, s.Size(1000.0, 0.30))
}

func TestSizeTinyStopDistanceNeverZero(t *testing.T) {
	// maxRisk=1000, riskPerShare=0.001: budget dwarfs one share's risk,
	// so the quantity must be at least one share, never 0 or negative.
	s := NewSizer(100_000, 0.01)
	qty := s.Size(100.0, 0.00001)
	assert.GreaterOrEqual(t, qty, 1)
}

func TestSizeGuards(t *testing.T) {
	s := NewSizer(100_000, 0.01)

	tests := []struct {
		name        string
		entryPrice  float64
		stopLossPct float64
	}{
		{"zero entry price", 0, 0.08},
		{"negative entry price", -10, 0.08},
		{"zero stop", 100, 0},
		{"negative stop", 100, -0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, s.Size(tt.entryPrice, tt.stopLossPct))
		})
	}
}

func TestSizeBudgetBelowOneShareRisk(t *testing.T) {
	// maxRisk=10, riskPerShare=80: budget cannot cover a single share's
	// risk, so the trade is refused.
	s := NewSizer(1_000, 0.01)
	assert.Equal(t, 0, s.Size(1000.0, 0.08))
}
