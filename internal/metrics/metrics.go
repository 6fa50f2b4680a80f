// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readdit_provider_requests_total",
			Help: "Outbound provider requests by outcome (ok, http_error, decode_error, transport_error, rejected)",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "readdit_provider_request_duration_seconds",
			Help:    "Outbound provider request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "readdit_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readdit_cache_lookups_total",
			Help: "Cache lookups by cache and result (hit, miss)",
		},
		[]string{"cache", "result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "readdit_cache_entries",
			Help: "Current number of entries per cache",
		},
		[]string{"cache"},
	)

	LanguageProbes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readdit_language_probes_total",
			Help: "Candidates probed by the language filter",
		},
	)

	LanguageFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readdit_language_fallbacks_total",
			Help: "Language filter runs that fell back to the unfiltered ranking",
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readdit_recommendations_total",
			Help: "Recommendation requests by status",
		},
		[]string{"status"},
	)
)
