package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). NaN matches NaN.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) && math.IsNaN(want[i]) {
			continue
		}
		diff := math.Abs(got[i] - want[i])
		if !(diff <= eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireRelative fails t unless got is within rel (relative) of want.
func RequireRelative(t testing.TB, name string, got, want, rel float64) {
	t.Helper()
	if want == 0 {
		if math.Abs(got) > rel {
			t.Fatalf("%s = %v, want 0 (±%v)", name, got, rel)
		}
		return
	}
	if !(math.Abs(got-want) <= rel*math.Abs(want)) {
		t.Fatalf("%s = %v, want %v within %.3g%%", name, got, want, 100*rel)
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		maxDiff = math.Max(maxDiff, math.Abs(a[i]-b[i]))
	}
	return maxDiff, nil
}
