package cost

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-align/algorithms/peaks"
)

var (
	signalA = []float64{0, 0, 0, 5, 0, 0, 9, 0, 0, 6, 4}
	signalB = []float64{4, 0, 0, 8, 0, 0, 6, 4, 0, 0, 0}
)

func newAccumulator(t *testing.T, a, b []float64, opts ...Option) *Accumulator {
	t.Helper()
	acc, err := New(a, b, peaks.Order(a), opts...)
	require.NoError(t, err)
	return acc
}

func TestNew_RejectsBadOrder(t *testing.T) {
	_, err := New([]float64{1, 2}, []float64{1}, []int{0})
	assert.Error(t, err)

	_, err = New([]float64{1, 2}, []float64{1}, []int{0, 2})
	assert.Error(t, err)
}

func TestAdvance_FollowsPeakOrder(t *testing.T) {
	acc := newAccumulator(t, signalA, signalB, WithErrorLog(true))

	// order starts 6, 9, 3, 10: at offset -3 these pair with b[3], b[6], b[0], b[7]
	s, err := acc.Advance(-3)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Evaluated)
	assert.Equal(t, 1.0, s.Cost) // (9-8)^2

	s, err = acc.Advance(-3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Cost) // (6-6)^2

	s, err = acc.Advance(-3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Cost) // (5-4)^2

	assert.Equal(t, []float64{1, 0, 1}, s.Errors)
	assert.Equal(t, 3, s.Overlapped)
	assert.Equal(t, 3, acc.Evaluations())
}

func TestAdvance_MonotoneUntilExhausted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := make([]float64, 15)
	b := make([]float64, 12)
	for i := range a {
		a[i] = float64(rng.Intn(20) - 5)
	}
	for i := range b {
		b[i] = float64(rng.Intn(20) - 5)
	}

	for _, o := range []int{-11, -4, 0, 3, 14} {
		acc := newAccumulator(t, a, b)
		prevCost := 0.0
		for k := 1; k <= len(a); k++ {
			require.False(t, acc.IsComplete(o))
			s, err := acc.Advance(o)
			require.NoError(t, err)
			assert.Equal(t, k, s.Evaluated)
			assert.GreaterOrEqual(t, s.Cost, prevCost)
			prevCost = s.Cost
		}

		assert.True(t, acc.IsComplete(o))
		assert.InDelta(t, Full(a, b, o), prevCost, 1e-9, "offset %d", o)

		_, err := acc.Advance(o)
		require.ErrorIs(t, err, ErrExhaustedOffset)

		s, ok := acc.State(o)
		require.True(t, ok)
		assert.Equal(t, len(a), s.Evaluated, "a failed advance must not change the state")
		assert.True(t, acc.IsComplete(o), "completion never reverts")
	}
}

func TestAdvance_OutOfBoundsContributesZero(t *testing.T) {
	a := []float64{9, 1, 1}
	b := []float64{0, 0, 0}
	acc := newAccumulator(t, a, b, WithErrorLog(true))

	// Peak 0 maps to b[-2]: no counterpart, but it is still consumed
	s, err := acc.Advance(-2)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Evaluated)
	assert.Equal(t, 0.0, s.Cost)
	assert.Equal(t, 0, s.Overlapped)
	assert.Equal(t, []float64{0}, s.Errors)

	// Extreme shifts where a single pair overlaps
	for _, o := range []int{-2, 2} {
		for !acc.IsComplete(o) {
			_, err := acc.Advance(o)
			require.NoError(t, err)
		}
		s, _ := acc.State(o)
		assert.Equal(t, 1, s.Overlapped, "offset %d", o)
	}
	assert.Equal(t, 1.0, acc.Cost(-2))
	assert.Equal(t, 81.0, acc.Cost(2))
}

func TestIsComplete_CreatesZeroState(t *testing.T) {
	acc := newAccumulator(t, signalA, signalB)

	_, ok := acc.State(4)
	require.False(t, ok)
	assert.False(t, acc.IsComplete(4))

	s, ok := acc.State(4)
	require.True(t, ok)
	assert.Equal(t, State{Offset: 4}, s)
	assert.Equal(t, 1, acc.Len())
	assert.Equal(t, 0.0, acc.Cost(99))
}

func TestIsComplete_EmptySignal(t *testing.T) {
	acc := newAccumulator(t, nil, signalB)
	assert.True(t, acc.IsComplete(0))

	_, err := acc.Advance(0)
	assert.ErrorIs(t, err, ErrExhaustedOffset)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	acc := newAccumulator(t, signalA, signalB, WithErrorLog(true))
	_, err := acc.Advance(0)
	require.NoError(t, err)

	snap := acc.Snapshot()
	snap[0].Errors[0] = 1000

	s, _ := acc.State(0)
	assert.NotEqual(t, 1000.0, s.Errors[0])
	assert.True(t, Equal(acc.Snapshot(), acc.Snapshot()))
	assert.False(t, Equal(snap, acc.Snapshot()))
}

func TestCompleted(t *testing.T) {
	acc := newAccumulator(t, []float64{1, 2}, []float64{2, 1})
	for !acc.IsComplete(0) {
		_, err := acc.Advance(0)
		require.NoError(t, err)
	}
	_, err := acc.Advance(1)
	require.NoError(t, err)

	done := acc.Completed()
	require.Len(t, done, 1)
	assert.Equal(t, 2.0, done[0].Cost)
}

func TestFull(t *testing.T) {
	assert.Equal(t, 2.0, Full(signalA, signalB, -3))
	assert.Equal(t, 0.0, Full(signalA, signalB, 20))
	assert.Equal(t, 4.0, Full([]float64{1, 2}, []float64{3}, 0))
}
