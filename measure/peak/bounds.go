package peak

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/cwbudde/algo-gammaspec/dsp/interp"
)

// Bounds is the (left, peak, right) index triple of a detected peak.
// Left < Peak < Right always holds for bounds returned by LocateBounds.
type Bounds struct {
	Left, Peak, Right int
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.Left, b.Peak, b.Right)
}

// Width returns Right - Left.
func (b Bounds) Width() int { return b.Right - b.Left }

func (b Bounds) validate(op string, n int) error {
	if b.Left < 0 || b.Right >= n {
		return core.Invalidf(op, "bounds %v outside [0,%d)", b, n)
	}
	if !(b.Left < b.Peak && b.Peak < b.Right) {
		return core.Invalidf(op, "bounds %v not ordered", b)
	}
	return nil
}

// BoundsConfig controls the boundary walk.
type BoundsConfig struct {
	// Tolerance is the slope magnitude below which the curve counts as flat.
	Tolerance float64
	// LeftGuard and RightGuard are the number of samples skipped on each
	// side of the peak before the slope is tested.
	LeftGuard  int
	RightGuard int
	// LeftMargin and RightMargin are the number of samples at each end
	// that lie outside the searchable span, such as the band where a
	// moving average is undefined. A walk reaching them has exhausted the
	// span.
	LeftMargin  int
	RightMargin int
}

// DefaultBoundsConfig returns the guard bands 20 (left) and 15 (right)
// with a tolerance of 0.5 counts per x unit.
func DefaultBoundsConfig() BoundsConfig {
	return BoundsConfig{Tolerance: 0.5, LeftGuard: 20, RightGuard: 15}
}

// LocateBounds walks outward from peak over the piecewise-linear
// interpolant of (x, y). The left walk tests the slope at peak-i-LeftGuard
// for i = 0, 1, ... and stops at the first sample where |slope| < Tolerance;
// the right walk does the same at peak+i+RightGuard. A walk that leaves the
// data, or enters a margin, returns a *BoundaryError.
func LocateBounds(x, y []float64, peak int, cfg BoundsConfig) (Bounds, error) {
	const op = "locate bounds"
	if err := core.ValidateSeries(op, x, y); err != nil {
		return Bounds{}, err
	}
	if err := core.ValidateStrictlyIncreasing(op, x); err != nil {
		return Bounds{}, err
	}
	if !(cfg.Tolerance > 0) || math.IsInf(cfg.Tolerance, 1) {
		return Bounds{}, core.Invalidf(op, "tolerance must be positive and finite, got %g", cfg.Tolerance)
	}
	if cfg.LeftGuard < 1 || cfg.RightGuard < 1 {
		return Bounds{}, core.Invalidf(op, "guard bands must be >= 1, got %d and %d", cfg.LeftGuard, cfg.RightGuard)
	}
	if cfg.LeftMargin < 0 || cfg.RightMargin < 0 {
		return Bounds{}, core.Invalidf(op, "margins must be >= 0, got %d and %d", cfg.LeftMargin, cfg.RightMargin)
	}
	n := len(y)
	if n < cfg.LeftGuard+cfg.RightGuard+1 {
		return Bounds{}, core.Invalidf(op, "%d samples cannot hold guard bands %d and %d around a peak",
			n, cfg.LeftGuard, cfg.RightGuard)
	}
	if peak < 0 || peak >= n {
		return Bounds{}, core.Invalidf(op, "peak index %d outside [0,%d)", peak, n)
	}
	if peak < cfg.LeftMargin || peak > n-1-cfg.RightMargin {
		return Bounds{}, core.Invalidf(op, "peak index %d inside the margins %d and %d", peak, cfg.LeftMargin, cfg.RightMargin)
	}
	if math.IsNaN(y[peak]) {
		return Bounds{}, core.Invalidf(op, "peak index %d has no observation", peak)
	}

	// The interpolant spans the run of observed samples around the peak.
	lo, hi := peak, peak
	for lo > 0 && !math.IsNaN(y[lo-1]) {
		lo--
	}
	for hi < n-1 && !math.IsNaN(y[hi+1]) {
		hi++
	}
	if hi == lo {
		return Bounds{}, core.Invalidf(op, "peak index %d is an isolated observation", peak)
	}
	curve, err := interp.NewLinear(x[lo:hi+1], y[lo:hi+1])
	if err != nil {
		return Bounds{}, err
	}

	left, err := walk(op, curve, x, lo, hi, peak, Left, cfg)
	if err != nil {
		return Bounds{}, err
	}
	right, err := walk(op, curve, x, lo, hi, peak, Right, cfg)
	if err != nil {
		return Bounds{}, err
	}

	return Bounds{Left: left, Peak: peak, Right: right}, nil
}

func walk(op string, curve *interp.Linear, x []float64, lo, hi, peak int, dir Direction, cfg BoundsConfig) (int, error) {
	step, guard := 1, cfg.RightGuard
	if dir == Left {
		step, guard = -1, cfg.LeftGuard
	}
	first, last := cfg.LeftMargin, len(x)-1-cfg.RightMargin
	for i := 0; ; i++ {
		idx := peak + step*(i+guard)
		if idx < first || idx > last {
			return 0, &BoundaryError{Peak: peak, Direction: dir, Tolerance: cfg.Tolerance}
		}
		if idx < lo || idx > hi {
			return 0, core.Invalidf(op, "%s walk from peak %d reached missing sample %d", dir, peak, idx)
		}
		if math.Abs(curve.Slope(x[idx])) < cfg.Tolerance {
			return idx, nil
		}
	}
}
