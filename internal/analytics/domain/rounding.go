package analytics

import "math"

// Round3 rounds to 3 decimal places, half-up. Applied only at output
// boundaries so intermediate sums never compound rounding error.
func Round3(v float64) float64 {
	return math.Floor(v*1000.0+0.5) / 1000.0
}

// Round2 rounds to 2 decimal places, half-up.
func Round2(v float64) float64 {
	return math.Floor(v*100.0+0.5) / 100.0
}
