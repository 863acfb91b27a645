// Package offset computes the admissible integer shifts between two signals.
//
// An offset o pairs index i of the first signal with index i+o of the
// second. Offsets are restricted so that a minimum fraction of each signal
// overlaps the other; shifts with too little overlap have too little
// statistical support to be trusted.
package offset

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMinOverlap requires at least half of each signal to overlap
const DefaultMinOverlap = 0.5

var (
	// ErrInvalidRange indicates the admissible offset range is empty
	ErrInvalidRange = errors.New("offset: admissible offset range is empty")

	// ErrInvalidFraction indicates a minimum-overlap fraction outside (0, 1]
	ErrInvalidFraction = fmt.Errorf("%w: minimum overlap fraction must be in (0, 1]", ErrInvalidRange)
)

// Range is the half-open interval [Min, Max) of admissible offsets
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Admissible returns the offsets for which at least the fraction f of each
// signal overlaps: [-floor(lenB*f)+1, floor(lenA*f)).
//
// Returns ErrInvalidFraction if f is not in (0, 1] and ErrInvalidRange if
// the resulting interval is empty, which includes any zero-length signal.
func Admissible(lenA, lenB int, f float64) (Range, error) {
	if math.IsNaN(f) || f <= 0 || f > 1 {
		return Range{}, fmt.Errorf("%w: got %v", ErrInvalidFraction, f)
	}
	if lenA <= 0 || lenB <= 0 {
		return Range{}, fmt.Errorf("%w: signal lengths %d and %d", ErrInvalidRange, lenA, lenB)
	}

	r := Range{
		Min: -int(math.Floor(float64(lenB)*f)) + 1,
		Max: int(math.Floor(float64(lenA) * f)),
	}
	if r.Len() == 0 {
		return Range{}, fmt.Errorf("%w: lengths %d and %d with overlap %v", ErrInvalidRange, lenA, lenB, f)
	}
	return r, nil
}

// Contains reports whether o is admissible
func (r Range) Contains(o int) bool {
	return o >= r.Min && o < r.Max
}

// Len returns the number of admissible offsets
func (r Range) Len() int {
	return max(0, r.Max-r.Min)
}

// Empty reports whether no offset is admissible
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Midpoint returns the middle admissible offset, rounding toward Min
func (r Range) Midpoint() int {
	return r.Min + (r.Len()-1)/2
}

// Clamp returns the admissible offset nearest to o. The range must be non-empty.
func (r Range) Clamp(o int) int {
	if o < r.Min {
		return r.Min
	}
	if o >= r.Max {
		return r.Max - 1
	}
	return o
}

// Offsets lists every admissible offset in ascending order
func (r Range) Offsets() []int {
	out := make([]int, 0, r.Len())
	for o := r.Min; o < r.Max; o++ {
		out = append(out, o)
	}
	return out
}

// Overlap returns how many index pairs overlap at offset o for signals of
// the given lengths
func Overlap(lenA, lenB, o int) int {
	lo := max(0, -o)
	hi := min(lenA, lenB-o)
	return max(0, hi-lo)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}
