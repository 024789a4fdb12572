package peak

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
)

// Errors returned by the peak stages. Typed errors below wrap them.
var (
	ErrInvalidInput       = core.ErrInvalidInput
	ErrNoBoundaryFound    = errors.New("peak: no boundary found")
	ErrInsufficientSignal = errors.New("peak: insufficient signal")
	ErrFitDidNotConverge  = errors.New("peak: fit did not converge")
)

// Direction is the side of a peak a boundary walk searched.
type Direction int

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// BoundaryError reports a walk that left the data before the slope dropped
// below the tolerance.
type BoundaryError struct {
	Peak      int
	Direction Direction
	Tolerance float64
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("peak: no %s boundary for peak %d with tolerance %g", e.Direction, e.Peak, e.Tolerance)
}

func (e *BoundaryError) Unwrap() error { return ErrNoBoundaryFound }

// SignalError reports bounds whose thresholded sub-window is empty.
type SignalError struct {
	Bounds Bounds
	Reason string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("peak: insufficient signal in %v: %s", e.Bounds, e.Reason)
}

func (e *SignalError) Unwrap() error { return ErrInsufficientSignal }

// FitError reports a Gaussian fit that failed. Err is the optimizer error,
// if any.
type FitError struct {
	Bounds Bounds
	Reason string
	Err    error
}

func (e *FitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("peak: fit over %v did not converge: %s: %v", e.Bounds, e.Reason, e.Err)
	}
	return fmt.Sprintf("peak: fit over %v did not converge: %s", e.Bounds, e.Reason)
}

func (e *FitError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFitDidNotConverge, e.Err}
	}
	return []error{ErrFitDidNotConverge}
}
