package rank

import "math"

// ZScores standardizes a series: (x - mean) / population stddev.
// When the stddev is zero (constant or singleton series) every element
// maps to 0 instead of NaN or Inf. Shared by all momentum-like factors.
func ZScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs)) // population variance, denominator N

	sd := math.Sqrt(variance)
	if sd <= 0 {
		return out // all zeros
	}

	for i, x := range xs {
		out[i] = (x - mean) / sd
	}
	return out
}
