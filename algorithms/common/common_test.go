package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_OrdersAscending(t *testing.T) {
	pq := NewPriorityQueue(func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 1, 3, 9, 2} {
		pq.Push(v)
	}
	require.Equal(t, 7, pq.Len())

	top, ok := pq.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, top)

	var got []int
	for pq.Len() > 0 {
		v, ok := pq.Pop()
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 1, 2, 3, 4, 5, 9}, got)

	_, ok = pq.Pop()
	assert.False(t, ok)
	_, ok = pq.Peek()
	assert.False(t, ok)
}

func TestPriorityQueue_TieBreakBySequence(t *testing.T) {
	type entry struct {
		key float64
		seq int
	}
	pq := NewPriorityQueue(func(a, b entry) bool {
		if a.key != b.key {
			return a.key < b.key
		}
		return a.seq < b.seq
	})
	for i := 0; i < 20; i++ {
		pq.Push(entry{key: float64(i % 2), seq: i})
	}
	assert.Len(t, pq.Items(), 20)

	prev := entry{key: -1, seq: -1}
	for pq.Len() > 0 {
		e, _ := pq.Pop()
		if e.key == prev.key {
			assert.Greater(t, e.seq, prev.seq)
		} else {
			assert.Greater(t, e.key, prev.key)
		}
		prev = e
	}
}

func TestNormalizer(t *testing.T) {
	in := []float64{2, 4, 6, 8}

	none := NewNormalizer(NoNormalization).Normalize(in)
	assert.Equal(t, in, none)
	none[0] = 100
	assert.Equal(t, 2.0, in[0], "input must not be modified")

	mm := NewNormalizer(MinMax).Normalize(in)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, 2.0 / 3, 1}, mm, 1e-12)

	z := NewNormalizer(ZScore).Normalize(in)
	assert.InDelta(t, 0, Mean(z), 1e-12)
	assert.InDelta(t, 1, StandardDeviation(z), 1e-12)

	flat := NewNormalizer(MinMax).Normalize([]float64{3, 3, 3})
	assert.Equal(t, []float64{0, 0, 0}, flat)

	assert.Empty(t, NewNormalizer(ZScore).Normalize(nil))
}

func TestParseNormalization(t *testing.T) {
	for name, want := range map[string]NormalizationType{
		"":        NoNormalization,
		"none":    NoNormalization,
		"ZScore":  ZScore,
		"min-max": MinMax,
	} {
		got, err := ParseNormalization(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if name != "" {
			roundTrip, err := ParseNormalization(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, roundTrip)
		}
	}

	_, err := ParseNormalization("log")
	assert.Error(t, err)
}

func TestMathHelpers(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StandardDeviation([]float64{1}))
	assert.Equal(t, 30.0, SumSquares([]float64{1, 2, 3, 4}))
	assert.Equal(t, []float64{0, 1, 5, 14}, PrefixSumSquares([]float64{1, 2, 3}))
	assert.Equal(t, 1, NextPowerOfTwo(0))
	assert.Equal(t, 16, NextPowerOfTwo(9))
	assert.Equal(t, 8, NextPowerOfTwo(8))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.True(t, IsFinite([]float64{1, 2}))
	assert.False(t, IsFinite([]float64{1, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
}
