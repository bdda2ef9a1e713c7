package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the collectors below.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
	OutcomeSkipped = "skipped"
)

var (
	// ExternalCalls counts calls to upstream sources (rpc, indexer, dexscreener, margin) by outcome.
	ExternalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valuator",
			Name:      "external_calls_total",
			Help:      "Calls to external data sources by source, method and outcome.",
		},
		[]string{"source", "method", "outcome"},
	)

	// LPDecompositions counts decomposition attempts of pool-token holdings.
	LPDecompositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valuator",
			Name:      "lp_decompositions_total",
			Help:      "LP decomposition attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// SnapshotDuration observes how long a full wallet valuation takes.
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "valuator",
			Name:      "snapshot_duration_seconds",
			Help:      "Wall time spent building one portfolio snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call twice.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ExternalCalls, LPDecompositions, SnapshotDuration)
	})
}

// ObserveCall records one upstream call.
func ObserveCall(source, method, outcome string) {
	ExternalCalls.WithLabelValues(source, method, outcome).Inc()
}
