package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-align/algorithms/cost"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
)

var (
	signalA = []float64{0, 0, 0, 5, 0, 0, 9, 0, 0, 6, 4}
	signalB = []float64{4, 0, 0, 8, 0, 0, 6, 4, 0, 0, 0}
)

func TestSquaredErrorCurve_ConcreteScenario(t *testing.T) {
	r, err := offset.Admissible(len(signalA), len(signalB), offset.DefaultMinOverlap)
	require.NoError(t, err)

	curve, err := NewSquaredErrorCurve(TimeDomain).Compute(signalA, signalB, r)
	require.NoError(t, err)

	assert.Equal(t, []float64{201, 2, 242, 290, 102, 186, 222, 162, 118}, curve.Costs)
	assert.Equal(t, -3, curve.Best)
	assert.Equal(t, 2.0, curve.MinCost)
	assert.Equal(t, 100.0, curve.Margin())
	assert.Equal(t, 102.0, curve.At(0))
	assert.Equal(t, TimeDomain, curve.Method)
}

func TestSquaredErrorCurve_FFTMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		a := make([]float64, 5+rng.Intn(60))
		b := make([]float64, 5+rng.Intn(60))
		for i := range a {
			a[i] = rng.NormFloat64() * 10
		}
		for i := range b {
			b[i] = rng.NormFloat64() * 10
		}
		r, err := offset.Admissible(len(a), len(b), offset.DefaultMinOverlap)
		require.NoError(t, err)

		direct, err := NewSquaredErrorCurve(TimeDomain).Compute(a, b, r)
		require.NoError(t, err)
		viaFFT, err := NewSquaredErrorCurve(FrequencyDomain).Compute(a, b, r)
		require.NoError(t, err)

		require.Len(t, viaFFT.Costs, len(direct.Costs))
		for k := range direct.Costs {
			require.InDelta(t, direct.Costs[k], viaFFT.Costs[k], 1e-6*(1+direct.Costs[k]), "trial %d k %d", trial, k)
			require.InDelta(t, cost.Full(a, b, r.Min+k), direct.Costs[k], 1e-9*(1+direct.Costs[k]))
		}
		assert.Equal(t, FrequencyDomain, viaFFT.Method)
	}
}

func TestSquaredErrorCurve_AutoMethod(t *testing.T) {
	r := offset.Range{Min: -1, Max: 2}
	curve, err := NewSquaredErrorCurve(Auto).Compute([]float64{1, 2, 3}, []float64{1, 2, 3}, r)
	require.NoError(t, err)
	assert.Equal(t, TimeDomain, curve.Method)
	assert.Equal(t, 0, curve.Best)

	sc := NewSquaredErrorCurve(Auto)
	sc.fftThreshold = 1
	curve, err = sc.Compute([]float64{1, 2, 3}, []float64{1, 2, 3}, r)
	require.NoError(t, err)
	assert.Equal(t, FrequencyDomain, curve.Method)
	assert.Equal(t, 0, curve.Best)
}

func TestSquaredErrorCurve_Errors(t *testing.T) {
	sc := NewSquaredErrorCurve(TimeDomain)

	_, err := sc.Compute(nil, signalB, offset.Range{Min: 0, Max: 1})
	assert.ErrorIs(t, err, offset.ErrInvalidRange)

	_, err = sc.Compute(signalA, signalB, offset.Range{})
	assert.ErrorIs(t, err, offset.ErrInvalidRange)

	_, err = NewSquaredErrorCurve(CorrelationMethod(42)).Compute(signalA, signalB, offset.Range{Min: 0, Max: 1})
	assert.Error(t, err)
}

func TestCostCurve_MarginSingleOffset(t *testing.T) {
	curve := &CostCurve{Range: offset.Range{Min: 0, Max: 1}, Costs: []float64{3}, MinCost: 3}
	assert.True(t, math.IsInf(curve.Margin(), 1))
}

func TestCorrelationMethod_String(t *testing.T) {
	assert.Equal(t, "time", TimeDomain.String())
	assert.Equal(t, "fft", FrequencyDomain.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "CorrelationMethod(9)", CorrelationMethod(9).String())
}

func TestParseCorrelationMethod(t *testing.T) {
	for name, want := range map[string]CorrelationMethod{"": Auto, "AUTO": Auto, "time": TimeDomain, " fft ": FrequencyDomain} {
		got, err := ParseCorrelationMethod(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseCorrelationMethod("wavelet")
	assert.Error(t, err)

	text, err := FrequencyDomain.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "fft", string(text))
}
