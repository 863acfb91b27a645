package common

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// NormalizationType defines normalization method applied before alignment
type NormalizationType int

const (
	NoNormalization NormalizationType = iota
	ZScore
	MinMax
)

func (n NormalizationType) String() string {
	switch n {
	case NoNormalization:
		return "none"
	case ZScore:
		return "zscore"
	case MinMax:
		return "minmax"
	default:
		return fmt.Sprintf("NormalizationType(%d)", int(n))
	}
}

// ParseNormalization maps a config name to a NormalizationType
func ParseNormalization(name string) (NormalizationType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoNormalization, nil
	case "zscore", "z-score":
		return ZScore, nil
	case "minmax", "min-max":
		return MinMax, nil
	default:
		return NoNormalization, fmt.Errorf("unknown normalization %q", name)
	}
}

// Normalizer rescales signals so that two recordings with different gain
// can be compared by squared error
type Normalizer struct {
	method NormalizationType
}

// NewNormalizer creates a new normalizer
func NewNormalizer(method NormalizationType) *Normalizer {
	return &Normalizer{method: method}
}

// Normalize returns a normalized copy of signal. The input is never modified.
func (n *Normalizer) Normalize(signal []float64) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)
	if len(signal) == 0 {
		return out
	}

	switch n.method {
	case ZScore:
		return zScoreNormalize(out)
	case MinMax:
		return minMaxNormalize(out)
	default:
		return out
	}
}

// zScoreNormalize normalizes to zero mean and unit variance in place
func zScoreNormalize(signal []float64) []float64 {
	mean := Mean(signal)
	std := StandardDeviation(signal)

	floats.AddConst(-mean, signal)
	if std < 1e-10 {
		// Constant data: centred only
		return signal
	}
	floats.Scale(1/std, signal)
	return signal
}

// minMaxNormalize normalizes to [0, 1] in place
func minMaxNormalize(signal []float64) []float64 {
	lo := floats.Min(signal)
	hi := floats.Max(signal)

	if math.Abs(hi-lo) < 1e-10 {
		for i := range signal {
			signal[i] = 0
		}
		return signal
	}

	floats.AddConst(-lo, signal)
	floats.Scale(1/(hi-lo), signal)
	return signal
}
