package align

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for alignmentsTotal
const (
	outcomeOK           = "ok"
	outcomeInvalidRange = "invalid_range"
	outcomeExhausted    = "exhausted"
	outcomeError        = "error"
)

var (
	alignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sonido_align",
		Name:      "alignments_total",
		Help:      "Alignment runs by method and outcome",
	}, []string{"method", "outcome"})

	searchSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sonido_align",
		Name:      "search_steps",
		Help:      "Cost evaluations performed per successful alignment",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
	}, []string{"method"})

	evaluationCoverage = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sonido_align",
		Name:      "evaluation_coverage",
		Help:      "Fraction of offset/peak pairs evaluated per successful alignment",
		Buckets:   prometheus.LinearBuckets(0.05, 0.1, 10),
	}, []string{"method"})

	alignDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sonido_align",
		Name:      "duration_seconds",
		Help:      "Wall time per alignment run",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"method"})
)
