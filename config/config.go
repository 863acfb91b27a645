package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
)

// ErrInvalidConfig indicates a configuration value outside its allowed range
var ErrInvalidConfig = errors.New("config: invalid alignment configuration")

// Method selects the alignment algorithm
type Method string

const (
	// MethodBestFirst is the lazy priority-guided search
	MethodBestFirst Method = "best_first"

	// MethodScan expands linearly from the seed with early exit
	MethodScan Method = "scan"

	// MethodExhaustive evaluates the full cost curve
	MethodExhaustive Method = "exhaustive"
)

// ParseMethod maps a name to a Method
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return MethodBestFirst, nil
	case MethodBestFirst, MethodScan, MethodExhaustive:
		return m, nil
	case "bestfirst", "best-first":
		return MethodBestFirst, nil
	default:
		return "", fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, name)
	}
}

// AlignmentConfig configures an alignment run
type AlignmentConfig struct {
	// Core parameters
	Method     Method  `json:"method" yaml:"method"`           // "best_first", "scan", "exhaustive"
	MinOverlap float64 `json:"min_overlap" yaml:"min_overlap"` // fraction in (0, 1]
	Seed       *int    `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Search settings
	MaxSteps     int  `json:"max_steps,omitempty" yaml:"max_steps,omitempty"` // 0 = range length * peaks
	RecordErrors bool `json:"record_errors" yaml:"record_errors"`
	Trace        bool `json:"trace" yaml:"trace"`

	// Scan settings
	EstimateBias bool `json:"estimate_bias" yaml:"estimate_bias"`

	// Exhaustive settings
	CurveMethod string `json:"curve_method" yaml:"curve_method"` // "auto", "time", "fft"

	// Preprocessing
	Normalization string `json:"normalization" yaml:"normalization"` // "none", "zscore", "minmax"

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultAlignmentConfig returns sensible defaults
func DefaultAlignmentConfig() *AlignmentConfig {
	return &AlignmentConfig{
		Method:        MethodBestFirst,
		MinOverlap:    offset.DefaultMinOverlap,
		RecordErrors:  true,
		Trace:         false,
		EstimateBias:  false,
		CurveMethod:   "auto",
		Normalization: "none",
		LogLevel:      "info",
	}
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig
func (c *AlignmentConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if math.IsNaN(c.MinOverlap) || c.MinOverlap <= 0 || c.MinOverlap > 1 {
		return fmt.Errorf("%w: %w: got %v", ErrInvalidConfig, offset.ErrInvalidFraction, c.MinOverlap)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must be non-negative, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	switch strings.ToLower(c.CurveMethod) {
	case "", "auto", "time", "fft":
	default:
		return fmt.Errorf("%w: unknown curve_method %q", ErrInvalidConfig, c.CurveMethod)
	}
	if _, err := common.ParseNormalization(c.Normalization); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a deep copy
func (c *AlignmentConfig) Clone() *AlignmentConfig {
	out := *c
	if c.Seed != nil {
		seed := *c.Seed
		out.Seed = &seed
	}
	return &out
}

// LoadAlignmentConfig loads configuration with priority: env > file > defaults.
//
// A missing file is not an error; an unparsable one is. The file may be
// YAML or JSON.
func LoadAlignmentConfig(path string) (*AlignmentConfig, error) {
	cfg := DefaultAlignmentConfig()

	if path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *AlignmentConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

// Environment variables recognised by LoadAlignmentConfig
const (
	EnvMethod        = "SONIDO_ALIGN_METHOD"
	EnvMinOverlap    = "SONIDO_ALIGN_MIN_OVERLAP"
	EnvSeed          = "SONIDO_ALIGN_SEED"
	EnvMaxSteps      = "SONIDO_ALIGN_MAX_STEPS"
	EnvNormalization = "SONIDO_ALIGN_NORMALIZATION"
	EnvLogLevel      = "SONIDO_ALIGN_LOG_LEVEL"
)

func loadConfigFromEnv(cfg *AlignmentConfig) {
	if v := os.Getenv(EnvMethod); v != "" {
		cfg.Method = Method(v)
	}
	if v := os.Getenv(EnvMinOverlap); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinOverlap = f
		}
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Seed = &i
		}
	}
	if v := os.Getenv(EnvMaxSteps); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MaxSteps = i
		}
	}
	if v := os.Getenv(EnvNormalization); v != "" {
		cfg.Normalization = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
