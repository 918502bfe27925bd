package sizing

import "math"

// Sizer converts a fixed fractional-risk budget and a stop-loss
// distance into an integer share quantity.
type Sizer struct {
	equity          float64
	riskPerTradePct float64
}

// NewSizer creates a sizer for the given portfolio equity and per-trade
// risk fraction.
func NewSizer(equity, riskPerTradePct float64) *Sizer {
	return &Sizer{equity: equity, riskPerTradePct: riskPerTradePct}
}

// Size returns the share quantity for a new position.
//
//	maxRisk      = equity * riskPerTrade
//	riskPerShare = entryPrice * stopLossPct
//	qty          = floor(maxRisk / riskPerShare)
//
// Guards return 0 for non-positive inputs. When flooring lands on 0 but
// the risk budget strictly exceeds one share's risk, the quantity is
// rounded up to 1 instead of refusing the trade.
func (s *Sizer) Size(entryPrice, stopLossPct float64) int {
	if entryPrice <= 0 || stopLossPct <= 0 {
		return 0
	}

	maxRisk := s.equity * s.riskPerTradePct
	riskPerShare := entryPrice * stopLossPct
	if riskPerShare <= 0 || maxRisk <= 0 {
		return 0
	}

	qty := int(math.Floor(maxRisk / riskPerShare))
	if qty == 0 && maxRisk > riskPerShare {
		return 1 // minimum viable position
	}
	if qty < 0 {
		return 0
	}
	return qty
}
