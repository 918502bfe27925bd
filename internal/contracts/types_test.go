package contracts

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		name    string
		rawMean float64
		want    float64
	}{
		{"neutral raw mean", 0.0, 0.5},
		{"max positive", 1.0, 1.0},
		{"max negative", -1.0, 0.0},
		{"above range clipped", 1.5, 1.0},
		{"below range clipped", -2.0, 0.0},
		{"mildly positive", 0.5, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSentiment(tt.rawMean)
			if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("NormalizeSentiment(%v) = %v, want %v", tt.rawMean, got, tt.want)
			}
		})
	}
}

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  aapl \n"); got != "AAPL" {
		t.Errorf("NormalizeTicker = %q, want AAPL", got)
	}
}

func TestPositionDaysHeld(t *testing.T) {
	pos := Position{
		Ticker:    "AAPL",
		EntryDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	today := time.Date(2025, 3, 13, 15, 30, 0, 0, time.UTC)
	if got := pos.DaysHeld(today); got != 3 {
		t.Errorf("DaysHeld = %d, want 3", got)
	}

	// Same day regardless of clock time
	if got := pos.DaysHeld(pos.EntryDate.Add(23 * time.Hour)); got != 0 {
		t.Errorf("DaysHeld same day = %d, want 0", got)
	}
}

func TestPriceHistoryLastDate(t *testing.T) {
	h := PriceHistory{
		"AAPL": {
			{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Close: 100},
			{Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), Close: 101},
		},
		"MSFT": {
			{Date: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Close: 400},
		},
		"EMPTY": {},
	}

	last, ok := h.LastDate()
	if !ok {
		t.Fatal("expected a last date")
	}
	if want := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC); !last.Equal(want) {
		t.Errorf("LastDate = %v, want %v", last, want)
	}

	if _, ok := (PriceHistory{}).LastDate(); ok {
		t.Error("empty history should report no last date")
	}
}

func TestFeaturesJSON(t *testing.T) {
	pnl := -0.0412
	f := Features{Ret5D: 0.031, NewsSent: 0.62, Score: 0.8, NewsCount: 4, PnL: &pnl}

	got := f.JSON()
	for _, fragment := range []string{`"ret_5d":0.031`, `"n_news":4`, `"pnl":-0.0412`} {
		if !strings.Contains(got, fragment) {
			t.Errorf("features JSON %s missing %s", got, fragment)
		}
	}

	// PnL omitted when nil
	if strings.Contains(Features{}.JSON(), "pnl") {
		t.Error("zero-value features should omit pnl")
	}
}
