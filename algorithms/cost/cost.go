// Package cost accumulates the squared alignment error of an offset lazily,
// one peak at a time.
//
// For each offset the Accumulator walks the peak order of the first signal.
// Step k pairs peak order[k] with its counterpart at order[k]+offset in the
// second signal and adds their squared difference. Because every
// contribution is non-negative the running cost is a lower bound on the
// offset's full cost, and it tightens fastest when the largest samples are
// visited first.
package cost

import (
	"errors"
	"fmt"
	"maps"
)

// ErrExhaustedOffset indicates Advance was called on an offset whose peaks
// have all been evaluated. It signals a driver bug, not a runtime condition.
var ErrExhaustedOffset = errors.New("cost: offset already fully evaluated")

// State is the running tally for one offset
type State struct {
	Offset int `json:"offset" yaml:"offset"`

	// Evaluated counts the peaks folded into Cost, 0 <= Evaluated <= peaks
	Evaluated int `json:"evaluated" yaml:"evaluated"`

	// Cost is the sum of squared errors so far. Never decreases.
	Cost float64 `json:"cost" yaml:"cost"`

	// Overlapped counts evaluated peaks that had a counterpart in the
	// second signal
	Overlapped int `json:"overlapped" yaml:"overlapped"`

	// Errors holds one contribution per evaluated peak (0 when the peak had
	// no counterpart). Only populated when error logging is enabled.
	Errors []float64 `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Complete reports whether all of peaks have been evaluated
func (s State) Complete(peaks int) bool {
	return s.Evaluated >= peaks
}

func (s State) clone() State {
	if s.Errors != nil {
		s.Errors = append([]float64(nil), s.Errors...)
	}
	return s
}

// Accumulator owns the per-offset states for one alignment. It is not safe
// for concurrent use.
type Accumulator struct {
	a, b        []float64
	order       []int
	states      map[int]*State
	logErrors   bool
	evaluations int
}

// Option configures an Accumulator
type Option func(*Accumulator)

// WithErrorLog records each per-peak contribution in State.Errors
func WithErrorLog(enabled bool) Option {
	return func(acc *Accumulator) {
		acc.logErrors = enabled
	}
}

// New creates an accumulator comparing a against b, visiting the peaks of a
// in the given order. order must be a permutation of a's indices; the
// slices are retained and must not be modified afterwards.
func New(a, b []float64, order []int, opts ...Option) (*Accumulator, error) {
	if len(order) != len(a) {
		return nil, fmt.Errorf("cost: peak order has %d entries for a signal of length %d", len(order), len(a))
	}
	for _, idx := range order {
		if idx < 0 || idx >= len(a) {
			return nil, fmt.Errorf("cost: peak index %d out of range [0, %d)", idx, len(a))
		}
	}

	acc := &Accumulator{
		a:      a,
		b:      b,
		order:  order,
		states: make(map[int]*State),
	}
	for _, opt := range opts {
		opt(acc)
	}
	return acc, nil
}

// state returns the state for offset, creating a zero state on first touch
func (acc *Accumulator) state(offset int) *State {
	s, ok := acc.states[offset]
	if !ok {
		s = &State{Offset: offset}
		acc.states[offset] = s
	}
	return s
}

// Advance folds the next peak into offset's cost and returns the updated
// state. A peak whose counterpart falls outside the second signal
// contributes zero but is still consumed.
//
// Returns ErrExhaustedOffset if every peak was already evaluated.
func (acc *Accumulator) Advance(offset int) (State, error) {
	s := acc.state(offset)

	i := s.Evaluated
	if i >= len(acc.order) {
		return s.clone(), fmt.Errorf("%w: offset %d after %d peaks", ErrExhaustedOffset, offset, i)
	}

	peak := acc.order[i]
	other := peak + offset

	contribution := 0.0
	if other >= 0 && other < len(acc.b) {
		d := acc.a[peak] - acc.b[other]
		contribution = d * d
		s.Cost += contribution
		s.Overlapped++
	}

	s.Evaluated++
	acc.evaluations++
	if acc.logErrors {
		s.Errors = append(s.Errors, contribution)
	}

	return s.clone(), nil
}

// IsComplete reports whether every peak has been evaluated for offset.
// A zero state is created if the offset was never touched.
func (acc *Accumulator) IsComplete(offset int) bool {
	return acc.state(offset).Complete(len(acc.order))
}

// State returns a copy of offset's state, if it exists
func (acc *Accumulator) State(offset int) (State, bool) {
	s, ok := acc.states[offset]
	if !ok {
		return State{}, false
	}
	return s.clone(), true
}

// Cost returns offset's current cost, 0 if untouched
func (acc *Accumulator) Cost(offset int) float64 {
	if s, ok := acc.states[offset]; ok {
		return s.Cost
	}
	return 0
}

// Peaks returns the number of peaks each offset must evaluate to complete
func (acc *Accumulator) Peaks() int {
	return len(acc.order)
}

// Len returns the number of offsets touched so far
func (acc *Accumulator) Len() int {
	return len(acc.states)
}

// Evaluations returns the total number of successful Advance calls
func (acc *Accumulator) Evaluations() int {
	return acc.evaluations
}

// Snapshot returns a deep copy of every state keyed by offset
func (acc *Accumulator) Snapshot() map[int]State {
	out := make(map[int]State, len(acc.states))
	for o, s := range acc.states {
		out[o] = s.clone()
	}
	return out
}

// Completed returns copies of the states whose evaluation has finished
func (acc *Accumulator) Completed() map[int]State {
	out := make(map[int]State)
	for o, s := range acc.states {
		if s.Complete(len(acc.order)) {
			out[o] = s.clone()
		}
	}
	return out
}

// Equal reports whether two snapshots hold identical states
func Equal(x, y map[int]State) bool {
	return maps.EqualFunc(x, y, func(s, t State) bool {
		if s.Offset != t.Offset || s.Evaluated != t.Evaluated || s.Cost != t.Cost || s.Overlapped != t.Overlapped {
			return false
		}
		if len(s.Errors) != len(t.Errors) {
			return false
		}
		for i := range s.Errors {
			if s.Errors[i] != t.Errors[i] {
				return false
			}
		}
		return true
	})
}

// Full returns the complete squared error between a and b at offset,
// summed in index order. Indices without a counterpart contribute nothing.
func Full(a, b []float64, offset int) float64 {
	total := 0.0
	lo := max(0, -offset)
	hi := min(len(a), len(b)-offset)
	for i := lo; i < hi; i++ {
		d := a[i] - b[i+offset]
		total += d * d
	}
	return total
}
