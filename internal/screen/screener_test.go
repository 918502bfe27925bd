package screen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

func snapshot(close, avgVol float64) contracts.PriceSnapshot {
	return contracts.PriceSnapshot{Close: close, AvgVolume20: avgVol}
}

func TestScreenFiltersByPriceAndVolume(t *testing.T) {
	s := NewScreener(Config{MinPrice: 5.0, MinAvgVolume: 2_000_000, MinSurvivors: 2}, logger.Nop())

	snaps := map[string]contracts.PriceSnapshot{
		"AAPL": snapshot(180, 50_000_000),  // passes
		"MSFT": snapshot(400, 20_000_000),  // passes
		"PENY": snapshot(2.50, 30_000_000), // fails price floor
		"THIN": snapshot(40, 100_000),      // fails volume floor
	}

	got := s.Screen(snaps)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestScreenFloorsAreStrict(t *testing.T) {
	s := NewScreener(Config{MinPrice: 5.0, MinAvgVolume: 2_000_000, MinSurvivors: 0}, logger.Nop())

	snaps := map[string]contracts.PriceSnapshot{
		"EXACT": snapshot(5.0, 2_000_000), // exactly at both floors: excluded
	}

	assert.Empty(t, s.Screen(snaps))
}

func TestScreenFallbackReturnsFullUniverse(t *testing.T) {
	s := NewScreener(Config{MinPrice: 5.0, MinAvgVolume: 2_000_000, MinSurvivors: 10}, logger.Nop())

	// 20 tickers, only 6 pass the floors.
	snaps := make(map[string]contracts.PriceSnapshot, 20)
	for i := 0; i < 6; i++ {
		snaps[fmt.Sprintf("GOOD%02d", i)] = snapshot(50, 10_000_000)
	}
	for i := 0; i < 14; i++ {
		snaps[fmt.Sprintf("BAD%02d", i)] = snapshot(1, 1_000)
	}

	got := s.Screen(snaps)
	assert.Len(t, got, 20, "below the survivor floor the full universe comes back")
}

func TestScreenSortedForDeterminism(t *testing.T) {
	s := NewScreener(Config{MinPrice: 1, MinAvgVolume: 1, MinSurvivors: 0}, logger.Nop())

	snaps := map[string]contracts.PriceSnapshot{
		"ZZZ": snapshot(10, 10),
		"AAA": snapshot(10, 10),
		"MMM": snapshot(10, 10),
	}

	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, s.Screen(snaps))
}
