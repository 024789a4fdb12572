package store

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath = errors.New("store: invalid database path")
	ErrInit        = errors.New("store: initialization failed")
	ErrSchema      = errors.New("store: schema setup failed")
	ErrWrite       = errors.New("store: write failed")
	ErrRead        = errors.New("store: read failed")
	ErrClose       = errors.New("store: close failed")
)

// Error records the phase of a store operation that failed.
type Error struct {
	Kind  error
	Phase string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func fail(kind error, phase string, err error) error {
	return &Error{Kind: kind, Phase: phase, Err: err}
}
