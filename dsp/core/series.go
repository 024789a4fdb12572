package core

import "math"

// ValidateSeries checks an index-aligned (x, y) pair: both non-empty, equal
// length, and x finite and non-decreasing. y may hold NaN for missing
// observations.
func ValidateSeries(op string, x, y []float64) error {
	if len(y) == 0 {
		return Invalidf(op, "empty spectrum")
	}
	if len(x) != len(y) {
		return Invalidf(op, "x and y length mismatch: %d vs %d", len(x), len(y))
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Invalidf(op, "x[%d] is not finite", i)
		}
		if i > 0 && v < x[i-1] {
			return Invalidf(op, "x is not monotonic at index %d", i)
		}
	}
	return nil
}

// ValidateStrictlyIncreasing reports an error unless every x[i] > x[i-1].
func ValidateStrictlyIncreasing(op string, x []float64) error {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return Invalidf(op, "x is not strictly increasing at index %d", i)
		}
	}
	return nil
}

// HasNaN reports whether any element of data is NaN.
func HasNaN(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
