package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-align/logging"
	"github.com/RyanBlaney/sonido-align/transcode"
)

var errEmptySignal = errors.New("signals: both a and b must be non-empty")

// signalFile is the on-disk input. JSON is valid YAML, so one decoder reads
// both formats.
type signalFile struct {
	A []float64 `yaml:"a" json:"a"`
	B []float64 `yaml:"b" json:"b"`
}

func loadSignals(path string) (*signalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signal file: %w", err)
	}

	var sf signalFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing signal file %s: %w", path, err)
	}
	if len(sf.A) == 0 || len(sf.B) == 0 {
		return nil, fmt.Errorf("%w (got %d and %d samples)", errEmptySignal, len(sf.A), len(sf.B))
	}
	return &sf, nil
}

// loadPair reads a and b from one signal file, or from two audio files
// (raw f64le PCM or anything ffmpeg decodes)
func loadPair(ctx context.Context, args []string, sampleRate int, logger logging.Logger) ([]float64, []float64, error) {
	if len(args) == 1 {
		sf, err := loadSignals(args[0])
		if err != nil {
			return nil, nil, err
		}
		return sf.A, sf.B, nil
	}

	cfg := transcode.DefaultDecoderConfig()
	cfg.SampleRate = sampleRate
	dec := transcode.NewDecoder(cfg).WithLogger(logger)

	a, err := dec.Load(ctx, args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := dec.Load(ctx, args[1])
	if err != nil {
		return nil, nil, err
	}
	if len(a) == 0 || len(b) == 0 {
		return nil, nil, fmt.Errorf("%w (got %d and %d samples)", errEmptySignal, len(a), len(b))
	}
	return a, b, nil
}
