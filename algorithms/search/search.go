// Package search finds the offset with the lowest squared alignment error
// using a best-first, branch-and-bound walk over the admissible offsets.
//
// The frontier is a min-heap keyed on each offset's current accumulated
// cost. Popping an offset either finishes the search, when that offset has
// been fully evaluated, or evaluates one more of its peaks and pushes it
// back with the increased cost. Costs only grow, so a fully evaluated offset
// at the head of the frontier cannot be beaten by anything still queued.
//
// Offsets that have never been evaluated enter the frontier with priority 0.
// Each expansion enqueues the unvisited neighbours o-1 and o+1, so new
// candidates are explored before known ones are refined further.
//
// Complexity:
//
//   - Time:  O(S log R) for S evaluation steps over R admissible offsets;
//     S <= R*N in the worst case, usually far less.
//   - Space: O(R) frontier and per-offset states.
package search

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/cost"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
	"github.com/RyanBlaney/sonido-align/logging"
)

// entry is one frontier item. seq breaks priority ties first-in first-out.
type entry struct {
	offset   int
	priority float64
	seq      uint64
}

func entryLess(x, y entry) bool {
	if x.priority != y.priority {
		return x.priority < y.priority
	}
	return x.seq < y.seq
}

// Outcome is the result of a completed search
type Outcome struct {
	BestOffset int     `json:"best_offset"`
	Cost       float64 `json:"cost"`

	// Steps counts cost evaluations, Pops counts frontier removals
	Steps int `json:"steps"`
	Pops  int `json:"pops"`

	// PopOrder lists popped offsets in order; only filled when tracing
	PopOrder []int `json:"pop_order,omitempty"`

	Diagnostics map[int]cost.State `json:"diagnostics"`
}

// Search is a single-use best-first alignment search
type Search struct {
	acc      *cost.Accumulator
	rng      offset.Range
	frontier *common.PriorityQueue[entry]
	enqueued map[int]bool
	seq      uint64

	seed     int
	hasSeed  bool
	maxSteps int
	trace    bool
	logger   logging.Logger

	steps    int
	pops     int
	popOrder []int
	done     bool
	best     int
}

// Option configures a Search
type Option func(*Search)

// WithSeed sets the initial offset estimate. Seeds outside the admissible
// range are clamped into it.
func WithSeed(o int) Option {
	return func(s *Search) {
		s.seed = o
		s.hasSeed = true
	}
}

// WithMaxSteps overrides the evaluation cap. Values <= 0 keep the default
// of range length times peak count, which is never reached by a correct run.
func WithMaxSteps(n int) Option {
	return func(s *Search) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithTrace records the order in which offsets are popped
func WithTrace(enabled bool) Option {
	return func(s *Search) {
		s.trace = enabled
	}
}

// WithLogger sets the logger; nil disables logging
func WithLogger(l logging.Logger) Option {
	return func(s *Search) {
		if l == nil {
			l = &logging.NoOpLogger{}
		}
		s.logger = l
	}
}

// New prepares a search over r using acc for cost evaluation. The seed is
// enqueued immediately with priority 0.
//
// Returns offset.ErrInvalidRange if r is empty.
func New(acc *cost.Accumulator, r offset.Range, opts ...Option) (*Search, error) {
	if acc == nil {
		return nil, fmt.Errorf("search: nil accumulator")
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: %s", offset.ErrInvalidRange, r)
	}

	s := &Search{
		acc:      acc,
		rng:      r,
		frontier: common.NewPriorityQueue(entryLess),
		enqueued: make(map[int]bool, r.Len()),
		maxSteps: r.Len() * max(1, acc.Peaks()),
		logger:   logging.WithFields(logging.Fields{"component": "alignment_search"}),
	}
	for _, opt := range opts {
		opt(s)
	}

	start := s.startOffset()
	s.push(start, 0)

	s.logger.Debug("Search initialised", logging.Fields{
		"range":    r.String(),
		"seed":     start,
		"peaks":    acc.Peaks(),
		"maxSteps": s.maxSteps,
	})

	return s, nil
}

// startOffset resolves the seed: the caller's estimate clamped into range,
// else 0 when admissible, else the range midpoint
func (s *Search) startOffset() int {
	if s.hasSeed {
		clamped := s.rng.Clamp(s.seed)
		if clamped != s.seed {
			s.logger.Warn("Seed outside admissible range, clamping", logging.Fields{
				"seed":    s.seed,
				"clamped": clamped,
				"range":   s.rng.String(),
			})
		}
		return clamped
	}
	if s.rng.Contains(0) {
		return 0
	}
	return s.rng.Midpoint()
}

func (s *Search) push(o int, priority float64) {
	s.enqueued[o] = true
	s.frontier.Push(entry{offset: o, priority: priority, seq: s.seq})
	s.seq++
}

// Step performs one pop of the frontier. It returns done=true once the
// popped offset is fully evaluated; BestOffset then holds the answer.
func (s *Search) Step() (bool, error) {
	if s.done {
		return true, nil
	}

	e, ok := s.frontier.Pop()
	if !ok {
		return false, s.exhausted(nil)
	}

	if s.acc.IsComplete(e.offset) {
		s.pops++
		if s.trace {
			s.popOrder = append(s.popOrder, e.offset)
		}
		s.done = true
		s.best = e.offset
		return true, nil
	}

	if s.steps >= s.maxSteps {
		// Leave the frontier as it was
		s.frontier.Push(e)
		return false, s.exhausted(ErrStepLimit)
	}

	s.pops++
	if s.trace {
		s.popOrder = append(s.popOrder, e.offset)
	}

	for _, n := range [2]int{e.offset - 1, e.offset + 1} {
		if s.rng.Contains(n) && !s.enqueued[n] {
			s.push(n, 0)
		}
	}

	st, err := s.acc.Advance(e.offset)
	if err != nil {
		return false, fmt.Errorf("search: advancing offset %d: %w", e.offset, err)
	}
	s.steps++

	s.push(e.offset, st.Cost)
	return false, nil
}

// Run steps the search until an offset completes. Cancellation of ctx, an
// empty frontier and the step cap all end the run with an *ExhaustedError
// holding the partial diagnostics.
func (s *Search) Run(ctx context.Context) (*Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, s.exhausted(err)
		}

		done, err := s.Step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	st, _ := s.acc.State(s.best)
	s.logger.Debug("Search complete", logging.Fields{
		"bestOffset": s.best,
		"cost":       st.Cost,
		"steps":      s.steps,
		"pops":       s.pops,
		"offsets":    s.acc.Len(),
	})

	return s.Outcome(), nil
}

// Outcome returns the result of a finished search, or nil if it has not
// finished
func (s *Search) Outcome() *Outcome {
	if !s.done {
		return nil
	}
	return &Outcome{
		BestOffset:  s.best,
		Cost:        s.acc.Cost(s.best),
		Steps:       s.steps,
		Pops:        s.pops,
		PopOrder:    append([]int(nil), s.popOrder...),
		Diagnostics: s.acc.Snapshot(),
	}
}

// Done reports whether an offset has completed
func (s *Search) Done() bool {
	return s.done
}

// Steps returns the number of cost evaluations so far
func (s *Search) Steps() int {
	return s.steps
}

// FrontierLen returns the number of queued offsets
func (s *Search) FrontierLen() int {
	return s.frontier.Len()
}

// MaxSteps returns the evaluation cap in force
func (s *Search) MaxSteps() int {
	return s.maxSteps
}

func (s *Search) exhausted(cause error) *ExhaustedError {
	s.logger.Warn("Search exhausted", logging.Fields{
		"steps": s.steps,
		"cause": fmt.Sprint(cause),
	})
	return &ExhaustedError{
		Steps:       s.steps,
		Diagnostics: s.acc.Snapshot(),
		Cause:       cause,
	}
}
