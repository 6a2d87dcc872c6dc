package tiling

import "math"

func sqrtf(v float32) float32 { return float32(math.Sqrt(float64(v))) }
func tanf(v float32) float32  { return float32(math.Tan(float64(v))) }

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// clampNonNegative maps negatives and -0 to +0. NaN passes through.
func clampNonNegative(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return v
}
