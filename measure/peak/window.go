package peak

import (
	"math"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
)

// DefaultThresholdFraction is the fraction of the peak height above
// background a sample must exceed to enter the sub-window.
const DefaultThresholdFraction = 0.2

// Window is the inclusive sub-window [Lo, Hi] of a peak whose counts rise
// above Threshold, together with the linear Background it was cut from.
type Window struct {
	Lo, Hi     int
	Background float64
	Threshold  float64
}

// Len returns the number of samples in the window.
func (w Window) Len() int { return w.Hi - w.Lo + 1 }

// ThresholdWindow cuts the part of bounds where y exceeds
// background + fraction*(y[peak]-background), with the background taken as
// the mean of y[Left] and y[Right]. Lo is the first such sample scanning
// right from Left, Hi the first scanning left from Right.
func ThresholdWindow(y []float64, b Bounds, fraction float64) (Window, error) {
	const op = "threshold window"
	if err := b.validate(op, len(y)); err != nil {
		return Window{}, err
	}
	if !(fraction > 0 && fraction < 1) {
		return Window{}, core.Invalidf(op, "fraction must be in (0,1), got %g", fraction)
	}
	for _, i := range []int{b.Left, b.Peak, b.Right} {
		if math.IsNaN(y[i]) {
			return Window{}, core.Invalidf(op, "no observation at index %d", i)
		}
	}

	background := 0.5 * (y[b.Left] + y[b.Right])
	height := y[b.Peak] - background
	if !(height > 0) {
		return Window{}, &SignalError{Bounds: b, Reason: "peak not above background"}
	}
	threshold := background + fraction*height

	lo := -1
	for i := b.Left; i <= b.Right; i++ {
		if y[i] > threshold {
			lo = i
			break
		}
	}
	if lo < 0 {
		return Window{}, &SignalError{Bounds: b, Reason: "no sample above threshold"}
	}
	hi := lo
	for i := b.Right; i >= b.Left; i-- {
		if y[i] > threshold {
			hi = i
			break
		}
	}

	return Window{Lo: lo, Hi: hi, Background: background, Threshold: threshold}, nil
}
