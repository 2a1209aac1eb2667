package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// QuoteRequestsTotal counts quote computations by outcome
	// (ok, error, cache_hit).
	QuoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cross_swap_quote_requests_total",
			Help: "Number of quote requests processed, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	// QuoteDurationSeconds observes the latency of full quote pipeline runs
	// (cache misses only).
	QuoteDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cross_swap_quote_duration_seconds",
			Help:    "Latency of quote pipeline executions.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UpstreamRetriesTotal counts retried requests against the price source.
	UpstreamRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cross_swap_price_source_retries_total",
			Help: "Number of retried price source requests.",
		},
	)

	// FeeFallbacksTotal counts live fee estimates replaced by the opt-in
	// static fallback.
	FeeFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cross_swap_fee_fallbacks_total",
			Help: "Number of network fee estimates served by the static fallback.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		QuoteRequestsTotal,
		QuoteDurationSeconds,
		UpstreamRetriesTotal,
		FeeFallbacksTotal,
	)
}
