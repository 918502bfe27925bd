package rank

// FallbackBenchmark is the benchmark ETF used for tickers without a
// sector mapping.
const FallbackBenchmark = "SPY"

// sectorETFs maps tickers to their sector ETF for the relative-strength
// factor. Unmapped tickers fall back to the broad-market benchmark.
var sectorETFs = map[string]string{
	// Technology
	"AAPL": "XLK", "MSFT": "XLK", "NVDA": "XLK", "AVGO": "XLK",
	"AMD": "XLK", "INTC": "XLK", "CRM": "XLK", "ORCL": "XLK",
	"ADBE": "XLK", "CSCO": "XLK", "QCOM": "XLK", "MU": "XLK",
	"PLTR": "XLK", "SMCI": "XLK",

	// Communication services
	"GOOGL": "XLC", "GOOG": "XLC", "META": "XLC", "NFLX": "XLC",
	"DIS": "XLC", "T": "XLC", "VZ": "XLC", "RBLX": "XLC",

	// Consumer discretionary
	"AMZN": "XLY", "TSLA": "XLY", "HD": "XLY", "MCD": "XLY",
	"NKE": "XLY", "SBUX": "XLY", "GME": "XLY", "F": "XLY", "GM": "XLY",

	// Consumer staples
	"PG": "XLP", "KO": "XLP", "PEP": "XLP", "WMT": "XLP", "COST": "XLP",

	// Financials
	"JPM": "XLF", "BAC": "XLF", "WFC": "XLF", "GS": "XLF",
	"MS": "XLF", "C": "XLF", "V": "XLF", "MA": "XLF", "HOOD": "XLF",

	// Health care
	"UNH": "XLV", "JNJ": "XLV", "PFE": "XLV", "LLY": "XLV",
	"ABBV": "XLV", "MRK": "XLV", "MRNA": "XLV",

	// Energy
	"XOM": "XLE", "CVX": "XLE", "COP": "XLE", "SLB": "XLE", "OXY": "XLE",

	// Industrials
	"BA": "XLI", "CAT": "XLI", "GE": "XLI", "UPS": "XLI",
	"DE": "XLI", "LMT": "XLI",

	// Materials / utilities / real estate
	"LIN": "XLB", "FCX": "XLB", "NEM": "XLB",
	"NEE": "XLU", "DUK": "XLU",
	"AMT": "XLRE", "PLD": "XLRE",
}

// SectorETF returns the sector benchmark ETF for a ticker, falling back
// to the broad-market benchmark when unmapped.
func SectorETF(ticker string) string {
	if etf, ok := sectorETFs[ticker]; ok {
		return etf
	}
	return FallbackBenchmark
}

// BenchmarkETFs returns the deduplicated set of benchmark ETFs needed
// to cover the given tickers, always including the fallback.
func BenchmarkETFs(tickers []string) []string {
	seen := map[string]bool{FallbackBenchmark: true}
	out := []string{FallbackBenchmark}
	for _, t := range tickers {
		etf := SectorETF(t)
		if !seen[etf] {
			seen[etf] = true
			out = append(out, etf)
		}
	}
	return out
}
