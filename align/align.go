package align

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/cost"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
	"github.com/RyanBlaney/sonido-align/algorithms/peaks"
	"github.com/RyanBlaney/sonido-align/algorithms/search"
	"github.com/RyanBlaney/sonido-align/algorithms/stats"
	"github.com/RyanBlaney/sonido-align/config"
	"github.com/RyanBlaney/sonido-align/logging"
)

// ErrInvalidSignal indicates a signal holding NaN or infinite samples
var ErrInvalidSignal = errors.New("align: signal contains NaN or infinite samples")

// Number is any integer or floating-point sample type
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Result is the outcome of a successful alignment
type Result struct {
	BestOffset      int     `json:"best_offset"`
	AccumulatedCost float64 `json:"accumulated_cost"`

	// Diagnostics maps every offset touched to its final state
	Diagnostics map[int]cost.State `json:"diagnostics"`

	Range  offset.Range  `json:"range"`
	Method config.Method `json:"method"`
	Seed   int           `json:"seed"`

	// Steps counts cost evaluations (peaks for best_first, index pairs
	// otherwise)
	Steps int `json:"steps"`

	// Coverage is Steps relative to evaluating every peak at every offset
	Coverage float64 `json:"coverage"`

	// PopOrder lists frontier pops (best_first with tracing only)
	PopOrder []int `json:"pop_order,omitempty"`

	Summary Summary `json:"summary"`
}

// Summary condenses the diagnostics of the winning offset
type Summary struct {
	// Overlapped counts peaks of the best offset that had a counterpart. A
	// zero here means the best cost is zero only because nothing overlapped.
	Overlapped int `json:"overlapped"`

	// MeanError and StdError describe the per-peak contributions of the
	// best offset; zero unless error logging is on
	MeanError float64 `json:"mean_error"`
	StdError  float64 `json:"std_error"`

	// Completed counts offsets whose cost is exact
	Completed int `json:"completed"`

	// Margin is the gap to the next cheapest exact offset, +Inf if none
	Margin float64 `json:"margin"`
}

// MarshalJSON writes an infinite Margin as null
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	out := struct {
		alias
		Margin *float64 `json:"margin"`
	}{alias: alias(s)}
	if !math.IsInf(s.Margin, 0) {
		m := s.Margin
		out.Margin = &m
	}
	return json.Marshal(out)
}

// Aligner runs alignments with a fixed configuration. It holds no per-run
// state and is safe for concurrent use.
type Aligner struct {
	cfg         *config.AlignmentConfig
	logger      logging.Logger
	normalizer  *common.Normalizer
	curveMethod stats.CorrelationMethod
}

// NewAligner validates cfg (nil means defaults), applies opts on a copy
// and returns a ready Aligner
func NewAligner(cfg *config.AlignmentConfig, opts ...Option) (*Aligner, error) {
	if cfg == nil {
		cfg = config.DefaultAlignmentConfig()
	}

	logger := logging.WithFields(logging.Fields{"component": "aligner"})
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))

	st := &settings{cfg: cfg.Clone(), logger: logger}
	for _, opt := range opts {
		opt(st)
	}

	method, err := config.ParseMethod(string(st.cfg.Method))
	if err != nil {
		return nil, err
	}
	st.cfg.Method = method

	if err := st.cfg.Validate(); err != nil {
		return nil, err
	}

	norm, err := common.ParseNormalization(st.cfg.Normalization)
	if err != nil {
		return nil, err
	}
	curveMethod, err := stats.ParseCorrelationMethod(st.cfg.CurveMethod)
	if err != nil {
		return nil, err
	}

	return &Aligner{
		cfg:         st.cfg,
		logger:      st.logger,
		normalizer:  common.NewNormalizer(norm),
		curveMethod: curveMethod,
	}, nil
}

// Config returns a copy of the effective configuration
func (al *Aligner) Config() *config.AlignmentConfig {
	return al.cfg.Clone()
}

// Align finds the offset o minimising the squared error between a[i] and
// b[i+o]. Inputs are copied and never modified.
func Align[T Number](a, b []T, opts ...Option) (*Result, error) {
	return AlignContext(context.Background(), a, b, opts...)
}

// AlignContext is Align with cancellation. A cancelled run returns an
// error matching both ErrSearchExhausted and the context error.
func AlignContext[T Number](ctx context.Context, a, b []T, opts ...Option) (*Result, error) {
	al, err := NewAligner(nil, opts...)
	if err != nil {
		return nil, err
	}
	return al.Align(ctx, toFloat64(a), toFloat64(b))
}

func toFloat64[T Number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// Align runs one alignment of a against b
func (al *Aligner) Align(ctx context.Context, a, b []float64) (*Result, error) {
	start := time.Now()
	method := string(al.cfg.Method)

	res, err := al.align(ctx, a, b)

	alignDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		alignmentsTotal.WithLabelValues(method, outcomeOK).Inc()
		searchSteps.WithLabelValues(method).Observe(float64(res.Steps))
		evaluationCoverage.WithLabelValues(method).Observe(res.Coverage)
	case errors.Is(err, ErrInvalidRange):
		alignmentsTotal.WithLabelValues(method, outcomeInvalidRange).Inc()
	case errors.Is(err, ErrSearchExhausted):
		alignmentsTotal.WithLabelValues(method, outcomeExhausted).Inc()
	default:
		alignmentsTotal.WithLabelValues(method, outcomeError).Inc()
	}

	return res, err
}

func (al *Aligner) align(ctx context.Context, a, b []float64) (*Result, error) {
	logger := al.logger.WithContext(ctx)

	if !common.IsFinite(a) || !common.IsFinite(b) {
		return nil, ErrInvalidSignal
	}

	r, err := offset.Admissible(len(a), len(b), al.cfg.MinOverlap)
	if err != nil {
		logger.Debug("No admissible offsets", logging.Fields{
			"lenA":       len(a),
			"lenB":       len(b),
			"minOverlap": al.cfg.MinOverlap,
		})
		return nil, fmt.Errorf("align: %w", err)
	}

	// Normalizer copies, so the caller's slices are never retained
	a = al.normalizer.Normalize(a)
	b = al.normalizer.Normalize(b)

	seed := al.seed(r)

	var res *Result
	switch al.cfg.Method {
	case config.MethodScan:
		res, err = al.alignScan(ctx, a, b, r, seed)
	case config.MethodExhaustive:
		res, err = al.alignExhaustive(ctx, a, b, r)
	default:
		res, err = al.alignBestFirst(ctx, a, b, r, logger)
	}
	if err != nil {
		logger.Error(err, "Alignment failed", logging.Fields{"method": al.cfg.Method})
		return nil, err
	}

	res.Range = r
	res.Method = al.cfg.Method
	res.Seed = seed
	if total := r.Len() * len(a); total > 0 {
		res.Coverage = math.Min(1, float64(res.Steps)/float64(total))
	}

	logger.Info("Alignment complete", logging.Fields{
		"method":     al.cfg.Method,
		"bestOffset": res.BestOffset,
		"cost":       res.AccumulatedCost,
		"steps":      res.Steps,
		"coverage":   fmt.Sprintf("%.3f", res.Coverage),
	})

	return res, nil
}

// seed resolves the starting offset the same way search.New does, so the
// result reports what was actually used
func (al *Aligner) seed(r offset.Range) int {
	if al.cfg.Seed != nil {
		return r.Clamp(*al.cfg.Seed)
	}
	if r.Contains(0) {
		return 0
	}
	return r.Midpoint()
}

func (al *Aligner) alignBestFirst(ctx context.Context, a, b []float64, r offset.Range, logger logging.Logger) (*Result, error) {
	acc, err := cost.New(a, b, peaks.Order(a), cost.WithErrorLog(al.cfg.RecordErrors))
	if err != nil {
		return nil, err
	}

	opts := []search.Option{
		search.WithMaxSteps(al.cfg.MaxSteps),
		search.WithTrace(al.cfg.Trace),
		search.WithLogger(logger.WithFields(logging.Fields{"component": "alignment_search"})),
	}
	if al.cfg.Seed != nil {
		// Raw seed, so the search can warn when it clamps
		opts = append(opts, search.WithSeed(*al.cfg.Seed))
	}

	s, err := search.New(acc, r, opts...)
	if err != nil {
		return nil, err
	}

	out, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BestOffset:      out.BestOffset,
		AccumulatedCost: out.Cost,
		Diagnostics:     out.Diagnostics,
		Steps:           out.Steps,
		PopOrder:        out.PopOrder,
	}
	res.Summary = summarize(out.Diagnostics, out.BestOffset, func(st cost.State) bool {
		return st.Complete(acc.Peaks())
	})
	return res, nil
}

func (al *Aligner) alignScan(ctx context.Context, a, b []float64, r offset.Range, seed int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &search.ExhaustedError{Cause: err}
	}

	out, err := search.Scan(a, b, r,
		search.WithEstimate(seed),
		search.WithEstimateBias(al.cfg.EstimateBias),
	)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BestOffset:      out.BestOffset,
		AccumulatedCost: out.Cost,
		Diagnostics:     out.Diagnostics,
		Steps:           out.Steps,
	}
	res.Summary = summarize(out.Diagnostics, out.BestOffset, func(st cost.State) bool {
		return st.Evaluated == offset.Overlap(len(a), len(b), st.Offset)
	})
	return res, nil
}

func (al *Aligner) alignExhaustive(ctx context.Context, a, b []float64, r offset.Range) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &search.ExhaustedError{Cause: err}
	}

	curve, err := stats.NewSquaredErrorCurve(al.curveMethod).Compute(a, b, r)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BestOffset:      curve.Best,
		AccumulatedCost: curve.MinCost,
		Diagnostics:     make(map[int]cost.State, r.Len()),
	}
	for _, o := range r.Offsets() {
		n := offset.Overlap(len(a), len(b), o)
		res.Diagnostics[o] = cost.State{Offset: o, Evaluated: n, Overlapped: n, Cost: curve.At(o)}
		res.Steps += n
	}
	res.Summary = summarize(res.Diagnostics, curve.Best, func(cost.State) bool { return true })
	res.Summary.Margin = curve.Margin()
	return res, nil
}

func summarize(diag map[int]cost.State, best int, complete func(cost.State) bool) Summary {
	st := diag[best]
	sum := Summary{
		Overlapped: st.Overlapped,
		MeanError:  common.Mean(st.Errors),
		StdError:   common.StandardDeviation(st.Errors),
		Margin:     math.Inf(1),
	}
	for o, other := range diag {
		if !complete(other) {
			continue
		}
		sum.Completed++
		if o != best {
			sum.Margin = math.Min(sum.Margin, other.Cost-st.Cost)
		}
	}
	return sum
}
