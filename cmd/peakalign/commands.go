package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-align/algorithms/common"
	"github.com/RyanBlaney/sonido-align/algorithms/offset"
	"github.com/RyanBlaney/sonido-align/algorithms/stats"
	"github.com/RyanBlaney/sonido-align/align"
	"github.com/RyanBlaney/sonido-align/config"
	"github.com/RyanBlaney/sonido-align/logging"
	"github.com/RyanBlaney/sonido-align/transcode"
)

// cliOptions holds flag values for one invocation
type cliOptions struct {
	configPath string
	verbose    bool
	sampleRate int

	seed       int
	minOverlap float64
	method     string
	normalize  string
	curve      string
	jsonOut    bool
	trace      bool

	cfg    *config.AlignmentConfig
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:          "peakalign",
		Short:        "Find the offset that best aligns two sparse signals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAlignmentConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := logging.ParseLevel(cfg.LogLevel)
			if opts.verbose {
				level = logging.DebugLevel
			}
			// Logs go to stderr so stdout carries only results
			opts.logger = logging.NewWriterLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr(), level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "alignment config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log search progress")
	rootCmd.PersistentFlags().Float64Var(&opts.minOverlap, "min-overlap", offset.DefaultMinOverlap, "minimum overlap fraction in (0, 1]")
	rootCmd.PersistentFlags().StringVar(&opts.normalize, "normalize", "none", "normalization: none, zscore, minmax")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().IntVar(&opts.sampleRate, "sample-rate", transcode.DefaultDecoderConfig().SampleRate, "decode rate for audio inputs")

	rootCmd.AddCommand(newRunCmd(opts), newCurveCmd(opts))
	return rootCmd
}

// applyFlags copies explicitly set flags over the loaded config. Flags a
// subcommand does not define are never Changed.
func (o *cliOptions) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("min-overlap") {
		o.cfg.MinOverlap = o.minOverlap
	}
	if flags.Changed("normalize") {
		o.cfg.Normalization = o.normalize
	}
	if flags.Changed("seed") {
		seed := o.seed
		o.cfg.Seed = &seed
	}
	if flags.Changed("method") {
		m, err := config.ParseMethod(o.method)
		if err != nil {
			return err
		}
		o.cfg.Method = m
	}
	if flags.Changed("trace") {
		o.cfg.Trace = o.trace
	}
	if flags.Changed("curve-method") {
		o.cfg.CurveMethod = o.curve
	}
	return o.cfg.Validate()
}

func newRunCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <signals-file> | run <audio-a> <audio-b>",
		Short: "Align signal a against signal b",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyFlags(cmd); err != nil {
				return err
			}

			a, b, err := loadPair(cmd.Context(), args, opts.sampleRate, opts.logger)
			if err != nil {
				return err
			}

			al, err := align.NewAligner(opts.cfg, align.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			res, err := al.Align(cmd.Context(), a, b)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.seed, "seed", 0, "initial offset estimate")
	cmd.Flags().StringVar(&opts.method, "method", string(config.MethodBestFirst), "algorithm: best_first, scan, exhaustive")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "record and print the frontier pop order")
	return cmd
}

func newCurveCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve <signals-file> | curve <audio-a> <audio-b>",
		Short: "Print the squared error of every admissible offset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyFlags(cmd); err != nil {
				return err
			}

			a, b, err := loadPair(cmd.Context(), args, opts.sampleRate, opts.logger)
			if err != nil {
				return err
			}

			r, err := offset.Admissible(len(a), len(b), opts.cfg.MinOverlap)
			if err != nil {
				return err
			}
			method, err := stats.ParseCorrelationMethod(opts.cfg.CurveMethod)
			if err != nil {
				return err
			}
			norm, err := common.ParseNormalization(opts.cfg.Normalization)
			if err != nil {
				return err
			}
			normalizer := common.NewNormalizer(norm)

			curve, err := stats.NewSquaredErrorCurve(method).Compute(normalizer.Normalize(a), normalizer.Normalize(b), r)
			if err != nil {
				return err
			}
			opts.logger.Debug("Cost curve computed", logging.Fields{
				"range":  r.String(),
				"method": curve.Method.String(),
			})

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), curve)
			}
			writeCurve(cmd.OutOrStdout(), curve)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.curve, "curve-method", "auto", "curve evaluation: auto, time, fft")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResult(w io.Writer, res *align.Result) {
	fmt.Fprintf(w, "offset:   %d\n", res.BestOffset)
	fmt.Fprintf(w, "cost:     %g\n", res.AccumulatedCost)
	fmt.Fprintf(w, "range:    %s\n", res.Range)
	fmt.Fprintf(w, "method:   %s\n", res.Method)
	fmt.Fprintf(w, "steps:    %d\n", res.Steps)
	fmt.Fprintf(w, "coverage: %.3f\n", res.Coverage)
	fmt.Fprintf(w, "overlap:  %d\n", res.Summary.Overlapped)
	if math.IsInf(res.Summary.Margin, 1) {
		fmt.Fprintln(w, "margin:   n/a")
	} else {
		fmt.Fprintf(w, "margin:   %g\n", res.Summary.Margin)
	}
	if len(res.PopOrder) > 0 {
		fmt.Fprintf(w, "pops:     %v\n", res.PopOrder)
	}
}

func writeCurve(w io.Writer, curve *stats.CostCurve) {
	for i, c := range curve.Costs {
		o := curve.Range.Min + i
		mark := ""
		if o == curve.Best {
			mark = " *"
		}
		fmt.Fprintf(w, "%d\t%g%s\n", o, c, mark)
	}
}
