package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
)

// CorrelationMethod represents different computational approaches
type CorrelationMethod int

const (
	// Direct time-domain calculation, O(R*N)
	TimeDomain CorrelationMethod = iota

	// FFT-based frequency domain (faster for large signals)
	FrequencyDomain

	// Auto picks FrequencyDomain above the FFT threshold
	Auto
)

func (m CorrelationMethod) String() string {
	switch m {
	case TimeDomain:
		return "time"
	case FrequencyDomain:
		return "fft"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("CorrelationMethod(%d)", int(m))
	}
}

// MarshalText writes the method name
func (m CorrelationMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseCorrelationMethod maps "time", "fft" or "auto" (also "") to a method
func ParseCorrelationMethod(name string) (CorrelationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "time":
		return TimeDomain, nil
	case "fft":
		return FrequencyDomain, nil
	default:
		return Auto, fmt.Errorf("stats: unknown correlation method %q", name)
	}
}

// defaultFFTThreshold is the R*N product above which Auto switches to FFT
const defaultFFTThreshold = 1 << 16

// CostCurve holds the full squared error of every admissible offset
type CostCurve struct {
	Range   offset.Range      `json:"range"`
	Costs   []float64         `json:"costs"` // Costs[o-Range.Min]
	Method  CorrelationMethod `json:"method"`
	Best    int               `json:"best"`
	MinCost float64           `json:"min_cost"`
}

// At returns the cost of offset o, which must be admissible
func (c *CostCurve) At(o int) float64 {
	return c.Costs[o-c.Range.Min]
}

// Margin returns the gap between the lowest and second lowest cost, or +Inf
// when the range holds a single offset. A small margin means an ambiguous
// alignment.
func (c *CostCurve) Margin() float64 {
	if len(c.Costs) < 2 {
		return math.Inf(1)
	}
	second := math.Inf(1)
	for i, v := range c.Costs {
		if i+c.Range.Min == c.Best {
			continue
		}
		second = math.Min(second, v)
	}
	return second - c.MinCost
}

// SquaredErrorCurve evaluates the full squared alignment error for every
// offset in the range. This is the exhaustive computation the lazy search
// avoids; it serves as the reference result and for small inputs.
//
// With FrequencyDomain the cross term sum(a[i]*b[i+o]) comes from one FFT
// correlation and the energy terms from prefix sums, so
//
//	cost(o) = sum a[i]^2 + sum b[i+o]^2 - 2 * sum a[i]*b[i+o]
//
// over the overlapping indices. Floating-point cancellation can make FFT
// costs differ from direct ones by a small relative error; ties are broken
// toward the lower offset.
type SquaredErrorCurve struct {
	method       CorrelationMethod
	fftThreshold int
}

// NewSquaredErrorCurve creates an evaluator using method
func NewSquaredErrorCurve(method CorrelationMethod) *SquaredErrorCurve {
	return &SquaredErrorCurve{
		method:       method,
		fftThreshold: defaultFFTThreshold,
	}
}

// Compute evaluates every offset in r
func (sc *SquaredErrorCurve) Compute(a, b []float64, r offset.Range) (*CostCurve, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: empty signals provided", offset.ErrInvalidRange)
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: %s", offset.ErrInvalidRange, r)
	}

	method := sc.method
	if method == Auto {
		method = TimeDomain
		if r.Len()*len(a) > sc.fftThreshold {
			method = FrequencyDomain
		}
	}

	var costs []float64
	switch method {
	case TimeDomain:
		costs = sc.computeTimeDomain(a, b, r)
	case FrequencyDomain:
		costs = sc.computeFFT(a, b, r)
	default:
		return nil, fmt.Errorf("unsupported correlation method: %s", method)
	}

	curve := &CostCurve{
		Range:  r,
		Costs:  costs,
		Method: method,
	}
	idx := floats.MinIdx(costs)
	curve.Best = r.Min + idx
	curve.MinCost = costs[idx]

	return curve, nil
}

func (sc *SquaredErrorCurve) computeTimeDomain(a, b []float64, r offset.Range) []float64 {
	costs := make([]float64, r.Len())
	for k, o := range r.Offsets() {
		lo := max(0, -o)
		hi := min(len(a), len(b)-o)
		if hi <= lo {
			continue
		}
		diff := make([]float64, hi-lo)
		floats.SubTo(diff, a[lo:hi], b[lo+o:hi+o])
		costs[k] = floats.Dot(diff, diff)
	}
	return costs
}

func (sc *SquaredErrorCurve) computeFFT(a, b []float64, r offset.Range) []float64 {
	// Zero padding to len(a)+len(b)-1 keeps the circular correlation from
	// wrapping for any lag in (-len(a), len(b))
	n := common.NextPowerOfTwo(len(a) + len(b) - 1)

	pa := make([]float64, n)
	pb := make([]float64, n)
	copy(pa, a)
	copy(pb, b)

	fa := fft.FFTReal(pa)
	fb := fft.FFTReal(pb)
	for i := range fa {
		fa[i] = complex(real(fa[i]), -imag(fa[i])) * fb[i]
	}
	corr := fft.IFFT(fa)

	energyA := common.PrefixSumSquares(a)
	energyB := common.PrefixSumSquares(b)

	costs := make([]float64, r.Len())
	for k, o := range r.Offsets() {
		lo := max(0, -o)
		hi := min(len(a), len(b)-o)
		if hi <= lo {
			continue
		}

		lag := o
		if lag < 0 {
			lag += n
		}
		cross := real(corr[lag])

		c := (energyA[hi] - energyA[lo]) + (energyB[hi+o] - energyB[lo+o]) - 2*cross
		costs[k] = math.Max(0, c)
	}
	return costs
}
