package utils

import "math"

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}

	return x
}

// NearestLevel snaps x to the closest of `levels` evenly spaced values
// spanning [lo, hi]. A single level collapses to lo.
func NearestLevel(x, lo, hi float64, levels int) float64 {
	if levels <= 1 || hi <= lo {
		return lo
	}

	step := (hi - lo) / float64(levels-1)
	idx := math.Round((Clamp(x, lo, hi) - lo) / step)

	return lo + idx*step
}
