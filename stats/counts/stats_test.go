package counts

import (
	"math"
	"testing"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestSummarize_Constant(t *testing.T) {
	counts := []float64{4, 4, 4, 4, 4}
	s := Summarize(counts)

	if s.Channels != 5 || s.Missing != 0 || s.Valid() != 5 {
		t.Fatalf("channels=%d missing=%d valid=%d", s.Channels, s.Missing, s.Valid())
	}
	if !almostEqual(s.Total, 20, tolerance) {
		t.Errorf("Total = %g, want 20", s.Total)
	}
	if !almostEqual(s.Mean, 4, tolerance) {
		t.Errorf("Mean = %g, want 4", s.Mean)
	}
	if !almostEqual(s.Variance, 0, tolerance) {
		t.Errorf("Variance = %g, want 0", s.Variance)
	}
	if s.Skewness != 0 {
		t.Errorf("Skewness = %g, want 0", s.Skewness)
	}
	if !almostEqual(s.Dispersion(), 0, tolerance) {
		t.Errorf("Dispersion = %g, want 0", s.Dispersion())
	}
}

func TestSummarize_Moments(t *testing.T) {
	counts := []float64{1, 2, 3, 4, 10}
	s := Summarize(counts)

	// mean 4, deviations -3 -2 -1 0 6
	wantVar := (9.0 + 4 + 1 + 0 + 36) / 5
	wantM3 := (-27.0 - 8 - 1 + 0 + 216) / 5
	wantSkew := wantM3 / math.Pow(wantVar, 1.5)

	if !almostEqual(s.Mean, 4, tolerance) {
		t.Errorf("Mean = %g, want 4", s.Mean)
	}
	if !almostEqual(s.Variance, wantVar, 1e-9) {
		t.Errorf("Variance = %g, want %g", s.Variance, wantVar)
	}
	if !almostEqual(s.Skewness, wantSkew, 1e-9) {
		t.Errorf("Skewness = %g, want %g", s.Skewness, wantSkew)
	}
	if s.Max != 10 || s.MaxPos != 4 {
		t.Errorf("Max = %g at %d, want 10 at 4", s.Max, s.MaxPos)
	}
	if s.Min != 1 || s.MinPos != 0 {
		t.Errorf("Min = %g at %d, want 1 at 0", s.Min, s.MinPos)
	}
}

func TestSummarize_SkipsMissing(t *testing.T) {
	nan := math.NaN()
	s := Summarize([]float64{nan, 3, nan, 5, 1})

	if s.Channels != 5 || s.Missing != 2 || s.Valid() != 3 {
		t.Fatalf("channels=%d missing=%d valid=%d", s.Channels, s.Missing, s.Valid())
	}
	if !almostEqual(s.Total, 9, tolerance) {
		t.Errorf("Total = %g, want 9", s.Total)
	}
	if !almostEqual(s.Mean, 3, tolerance) {
		t.Errorf("Mean = %g, want 3", s.Mean)
	}
	if s.MaxPos != 3 || s.MinPos != 4 {
		t.Errorf("MaxPos=%d MinPos=%d, want 3 and 4", s.MaxPos, s.MinPos)
	}
}

func TestSummarize_Empty(t *testing.T) {
	for _, counts := range [][]float64{nil, {math.NaN(), math.NaN()}} {
		s := Summarize(counts)
		if s.Valid() != 0 {
			t.Fatalf("Valid = %d, want 0", s.Valid())
		}
		if !math.IsNaN(s.Mean) || !math.IsNaN(s.Max) || s.MaxPos != -1 {
			t.Errorf("empty summary = %+v", s)
		}
		if s.Total != 0 {
			t.Errorf("Total = %g, want 0", s.Total)
		}
	}
}

func TestTotal(t *testing.T) {
	got := Total([]float64{1, 2, math.NaN(), 3.5})
	if !almostEqual(got, 6.5, tolerance) {
		t.Errorf("Total = %g, want 6.5", got)
	}
	if Total(nil) != 0 {
		t.Error("Total(nil) != 0")
	}
}

func TestDispersion_ZeroMean(t *testing.T) {
	s := Summarize([]float64{0, 0, 0})
	if !math.IsNaN(s.Dispersion()) {
		t.Errorf("Dispersion = %g, want NaN", s.Dispersion())
	}
}
