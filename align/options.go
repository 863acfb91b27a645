package align

import (
	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/config"
	"github.com/RyanBlaney/sonido-align/logging"
)

// Option adjusts an alignment run on top of its AlignmentConfig
type Option func(*settings)

type settings struct {
	cfg    *config.AlignmentConfig
	logger logging.Logger
}

// WithSeed sets the initial offset estimate
func WithSeed(o int) Option {
	return func(s *settings) {
		s.cfg.Seed = &o
	}
}

// WithMinOverlap sets the minimum overlap fraction, in (0, 1]
func WithMinOverlap(f float64) Option {
	return func(s *settings) {
		s.cfg.MinOverlap = f
	}
}

// WithMethod selects the alignment algorithm
func WithMethod(m config.Method) Option {
	return func(s *settings) {
		s.cfg.Method = m
	}
}

// WithErrorLog records per-peak error contributions in the diagnostics
func WithErrorLog(enabled bool) Option {
	return func(s *settings) {
		s.cfg.RecordErrors = enabled
	}
}

// WithTrace records the frontier pop order
func WithTrace(enabled bool) Option {
	return func(s *settings) {
		s.cfg.Trace = enabled
	}
}

// WithMaxSteps caps the number of cost evaluations
func WithMaxSteps(n int) Option {
	return func(s *settings) {
		s.cfg.MaxSteps = n
	}
}

// WithNormalization rescales both signals before alignment
func WithNormalization(n common.NormalizationType) Option {
	return func(s *settings) {
		s.cfg.Normalization = n.String()
	}
}

// WithEstimateBias penalises offsets far from the seed (scan method only)
func WithEstimateBias(enabled bool) Option {
	return func(s *settings) {
		s.cfg.EstimateBias = enabled
	}
}

// WithLogger sets the logger; nil silences the run
func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		if l == nil {
			l = &logging.NoOpLogger{}
		}
		s.logger = l
	}
}
