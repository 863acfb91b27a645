// Package transcode turns audio files into mono sample slices for
// alignment, either by decoding through ffmpeg or by reading raw float64
// little-endian PCM directly.
package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-align/logging"
)

// ErrTruncatedPCM indicates raw PCM whose length is not a multiple of 8 bytes
var ErrTruncatedPCM = errors.New("transcode: PCM data is not a whole number of float64 samples")

// rawExtensions are read as f64le PCM without ffmpeg
var rawExtensions = map[string]bool{".f64": true, ".f64le": true, ".raw": true, ".pcm": true}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	SampleRate  int           `json:"sample_rate" yaml:"sample_rate"`
	MaxDuration time.Duration `json:"max_duration" yaml:"max_duration"` // 0 = no limit
	FFmpegPath  string        `json:"ffmpeg_path" yaml:"ffmpeg_path"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"` // per ffmpeg run, 0 = none
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		SampleRate: 8000, // Plenty for envelope-level alignment
		FFmpegPath: "ffmpeg",
		Timeout:    30 * time.Second,
	}
}

// Decoder produces mono float64 signals
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder; a nil config means defaults
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}
}

// WithLogger returns a copy of d logging to l
func (d *Decoder) WithLogger(l logging.Logger) *Decoder {
	if l == nil {
		l = &logging.NoOpLogger{}
	}
	return &Decoder{config: d.config, logger: l.WithFields(logging.Fields{"component": "audio_decoder"})}
}

// Load reads a signal from path. Raw PCM extensions are parsed directly,
// anything else goes through ffmpeg.
func (d *Decoder) Load(ctx context.Context, path string) ([]float64, error) {
	if rawExtensions[strings.ToLower(filepath.Ext(path))] {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("transcode: %w", err)
		}
		defer f.Close()
		return ReadPCM(f)
	}
	return d.DecodeFile(ctx, path)
}

// DecodeFile decodes any ffmpeg-readable file to mono f64le at the
// configured sample rate
func (d *Decoder) DecodeFile(ctx context.Context, filename string) ([]float64, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := d.BuildArgs(filename)
	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("transcode: ffmpeg decode failed: %w", err)
	}

	samples, err := ReadPCM(bytes.NewReader(output))
	if err != nil {
		return nil, err
	}

	logger.Debug("Decoded audio", logging.Fields{
		"samples":  len(samples),
		"duration": time.Duration(float64(len(samples)) / float64(d.config.SampleRate) * float64(time.Second)).String(),
	})
	return samples, nil
}

// BuildArgs returns the ffmpeg arguments decoding input to stdout
func (d *Decoder) BuildArgs(input string) []string {
	// Raw float64 little-endian mono on stdout, no video, ffmpeg quiet
	args := []string{
		"-v", "error",
		"-i", input,
		"-vn",
		"-map", "0:a:0",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.SampleRate),
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}
	return append(args, "pipe:1")
}

// ReadPCM parses float64 little-endian samples until EOF
func ReadPCM(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transcode: reading PCM: %w", err)
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedPCM, len(data))
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		samples[i] = math.Float64frombits(bits)
	}
	return samples, nil
}

// WritePCM writes samples as float64 little-endian
func WritePCM(w io.Writer, samples []float64) error {
	return binary.Write(w, binary.LittleEndian, samples)
}
