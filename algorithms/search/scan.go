package search

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-align/algorithms/cost"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
)

// ScanResult is the outcome of a linear scan
type ScanResult struct {
	BestOffset int     `json:"best_offset"`
	Cost       float64 `json:"cost"`

	// Steps counts index pairs compared across all offsets
	Steps int `json:"steps"`

	// Pruned counts offsets abandoned once their cost passed the best so far
	Pruned int `json:"pruned"`

	// Diagnostics holds, per offset, the pairs compared (Evaluated and
	// Overlapped) and the cost reached, bias included
	Diagnostics map[int]cost.State `json:"diagnostics"`
}

type scanConfig struct {
	estimate    int
	hasEstimate bool
	bias        bool
}

// ScanOption configures Scan
type ScanOption func(*scanConfig)

// WithEstimate centres the scan on o (clamped into the range)
func WithEstimate(o int) ScanOption {
	return func(c *scanConfig) {
		c.estimate = o
		c.hasEstimate = true
	}
}

// WithEstimateBias adds (offset-estimate)^2 / 2 to each offset's cost,
// favouring shifts close to the estimate
func WithEstimateBias(enabled bool) ScanOption {
	return func(c *scanConfig) {
		c.bias = enabled
	}
}

// EstimateBias is the penalty applied to an offset d away from the estimate
func EstimateBias(d int) float64 {
	return float64(d*d) / 2.0
}

// Scan evaluates offsets outward from the estimate, alternating left and
// right, comparing samples in index order. Evaluation of an offset stops as
// soon as its cost exceeds the best complete cost found so far. On equal
// costs the offset nearer the estimate wins (left before right).
//
// Unlike Search, Scan needs no peak order and no frontier; it suits short
// signals and serves as an independent cross-check.
func Scan(a, b []float64, r offset.Range, opts ...ScanOption) (*ScanResult, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: %s", offset.ErrInvalidRange, r)
	}

	cfg := scanConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	estimate := 0
	switch {
	case cfg.hasEstimate:
		estimate = r.Clamp(cfg.estimate)
	case r.Contains(0):
		estimate = 0
	default:
		estimate = r.Midpoint()
	}

	res := &ScanResult{
		Diagnostics: make(map[int]cost.State, r.Len()),
	}

	evaluate := func(o int, bound float64) cost.State {
		st := cost.State{Offset: o}
		if cfg.bias {
			st.Cost = EstimateBias(o - estimate)
		}

		lo := max(0, -o)
		hi := min(len(a), len(b)-o)
		for i := lo; i < hi; i++ {
			if st.Cost > bound {
				break
			}
			d := a[i] - b[i+o]
			st.Cost += d * d
			st.Evaluated++
			st.Overlapped++
		}

		res.Steps += st.Evaluated
		res.Diagnostics[o] = st
		return st
	}

	best := evaluate(estimate, math.Inf(1))
	res.BestOffset, res.Cost = estimate, best.Cost

	consider := func(o int) {
		st := evaluate(o, res.Cost)
		if st.Evaluated < offset.Overlap(len(a), len(b), o) {
			res.Pruned++
			return
		}
		if st.Cost < res.Cost {
			res.BestOffset, res.Cost = o, st.Cost
		}
	}

	for left, right := estimate-1, estimate+1; left >= r.Min || right < r.Max; left, right = left-1, right+1 {
		if left >= r.Min {
			consider(left)
		}
		if right < r.Max {
			consider(right)
		}
	}

	return res, nil
}
