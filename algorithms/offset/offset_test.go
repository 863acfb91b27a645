package offset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissible(t *testing.T) {
	tests := []struct {
		name       string
		lenA, lenB int
		f          float64
		want       Range
	}{
		{"equal lengths default", 11, 11, DefaultMinOverlap, Range{Min: -4, Max: 5}},
		{"short b", 10, 4, DefaultMinOverlap, Range{Min: -1, Max: 5}},
		{"full overlap only", 4, 4, 1, Range{Min: -3, Max: 4}},
		{"two samples each", 2, 2, DefaultMinOverlap, Range{Min: 0, Max: 1}},
		{"small fraction", 10, 10, 0.25, Range{Min: -1, Max: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Admissible(tt.lenA, tt.lenB, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Empty())
		})
	}
}

func TestAdmissible_Errors(t *testing.T) {
	tests := []struct {
		name       string
		lenA, lenB int
		f          float64
		fraction   bool
	}{
		{"empty a", 0, 5, 0.5, false},
		{"empty b", 5, 0, 0.5, false},
		{"single samples", 1, 1, 0.5, false},
		{"zero fraction", 5, 5, 0, true},
		{"fraction above one", 5, 5, 1.5, true},
		{"nan fraction", 5, 5, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Admissible(tt.lenA, tt.lenB, tt.f)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRange)
			assert.Equal(t, tt.fraction, errors.Is(err, ErrInvalidFraction))
		})
	}
}

func TestAdmissible_EqualLengthsAlwaysOverlap(t *testing.T) {
	for n := 2; n < 40; n++ {
		r, err := Admissible(n, n, DefaultMinOverlap)
		require.NoError(t, err)
		for _, o := range r.Offsets() {
			assert.Greater(t, 2*Overlap(n, n, o), n, "n=%d o=%d", n, o)
		}
	}
}

func TestAdmissible_UnequalLengthsMayNotOverlap(t *testing.T) {
	// The policy scales each bound by its own signal, so a very short second
	// signal admits offsets past its end.
	r, err := Admissible(19, 2, DefaultMinOverlap)
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 0, Max: 9}, r)
	assert.Equal(t, 0, Overlap(19, 2, 8))
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Min: -4, Max: 5}

	assert.Equal(t, 9, r.Len())
	assert.True(t, r.Contains(-4))
	assert.True(t, r.Contains(4))
	assert.False(t, r.Contains(5))
	assert.False(t, r.Contains(-5))
	assert.Equal(t, 0, r.Midpoint())
	assert.Equal(t, -4, r.Clamp(-100))
	assert.Equal(t, 4, r.Clamp(100))
	assert.Equal(t, 2, r.Clamp(2))
	assert.Equal(t, []int{-4, -3, -2, -1, 0, 1, 2, 3, 4}, r.Offsets())
	assert.Equal(t, "[-4, 5)", r.String())

	assert.Equal(t, 3, Range{Min: 3, Max: 5}.Midpoint())
	assert.True(t, Range{Min: 2, Max: 2}.Empty())
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 8, Overlap(11, 11, -3))
	assert.Equal(t, 11, Overlap(11, 11, 0))
	assert.Equal(t, 1, Overlap(3, 3, 2))
	assert.Equal(t, 0, Overlap(3, 3, 3))
	assert.Equal(t, 4, Overlap(10, 4, 0))
}
