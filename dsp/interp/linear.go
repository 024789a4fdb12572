package interp

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"gonum.org/v1/gonum/diff/fd"
	gonuminterp "gonum.org/v1/gonum/interp"
)

// Linear is a piecewise-linear interpolant over strictly increasing knots.
type Linear struct {
	xs []float64
	pl gonuminterp.PiecewiseLinear
}

// NewLinear fits the interpolant through (xs[i], ys[i]). xs must be strictly
// increasing and ys finite; at least two knots are required.
func NewLinear(xs, ys []float64) (*Linear, error) {
	const op = "interp"
	if len(xs) < 2 {
		return nil, core.Invalidf(op, "need at least 2 knots, got %d", len(xs))
	}
	if len(xs) != len(ys) {
		return nil, core.Invalidf(op, "x and y length mismatch: %d vs %d", len(xs), len(ys))
	}
	if err := core.ValidateStrictlyIncreasing(op, xs); err != nil {
		return nil, err
	}
	for i, v := range ys {
		if !core.IsFinite(v) {
			return nil, core.Invalidf(op, "y[%d] is not finite", i)
		}
	}

	l := &Linear{xs: append([]float64(nil), xs...)}
	if err := l.pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return l, nil
}

// Len returns the number of knots.
func (l *Linear) Len() int { return len(l.xs) }

// At returns the interpolated value at pos. Outside the knot range the end
// values are held.
func (l *Linear) At(pos float64) float64 {
	return l.pl.Predict(pos)
}

// Slope returns d/dx of the interpolant at pos.
func (l *Linear) Slope(pos float64) float64 {
	n := len(l.xs)
	if pos < l.xs[0] || pos > l.xs[n-1] {
		return 0
	}

	// Neighbouring knots strictly below and above pos.
	hi := sort.Search(n, func(i int) bool { return l.xs[i] > pos })
	lo := hi - 1
	if lo >= 0 && l.xs[lo] == pos {
		lo--
	}

	gapLeft, gapRight := math.Inf(1), math.Inf(1)
	if lo >= 0 {
		gapLeft = pos - l.xs[lo]
	}
	if hi < n {
		gapRight = l.xs[hi] - pos
	}

	settings := &fd.Settings{Formula: fd.Central, Step: 0.5 * math.Min(gapLeft, gapRight)}
	switch {
	case lo < 0:
		settings = &fd.Settings{Formula: fd.Forward, Step: 0.5 * gapRight}
	case hi >= n:
		settings = &fd.Settings{Formula: fd.Backward, Step: 0.5 * gapLeft}
	}

	return fd.Derivative(l.At, pos, settings)
}

// SlopeAt returns the slope at knot i.
func (l *Linear) SlopeAt(i int) float64 {
	return l.Slope(l.xs[i])
}
