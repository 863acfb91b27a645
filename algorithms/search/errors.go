package search

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-align/algorithms/cost"
)

var (
	// ErrSearchExhausted indicates the search stopped before any offset was
	// fully evaluated. Returned errors are *ExhaustedError values that match
	// this sentinel through errors.Is.
	ErrSearchExhausted = errors.New("search: exhausted before any offset completed")

	// ErrStepLimit is the cause recorded when the hard step cap is reached
	ErrStepLimit = errors.New("search: step limit reached")
)

// ExhaustedError carries the partial state of a search that did not reach
// a fully evaluated offset
type ExhaustedError struct {
	// Steps is the number of cost evaluations performed
	Steps int

	// Diagnostics is the per-offset state accumulated before stopping
	Diagnostics map[int]cost.State

	// Cause is nil for an empty frontier, ErrStepLimit for the step cap,
	// or the context error for a cancelled run
	Cause error
}

func (e *ExhaustedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s after %d steps: %v", ErrSearchExhausted, e.Steps, e.Cause)
	}
	return fmt.Sprintf("%s after %d steps: frontier empty", ErrSearchExhausted, e.Steps)
}

// Is matches ErrSearchExhausted
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrSearchExhausted
}

// Unwrap exposes the cause, so errors.Is(err, context.Canceled) works
func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}
