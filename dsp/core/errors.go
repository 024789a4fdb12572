package core

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned (wrapped in an *InputError) when a stage
// rejects malformed input at its entry.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why an operation rejected its input.
type InputError struct {
	Op     string
	Reason string
}

// Invalidf returns an *InputError for op with a formatted reason.
func Invalidf(op, format string, args ...any) error {
	return &InputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
