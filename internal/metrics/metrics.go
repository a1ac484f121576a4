// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the search, ranking and personalization core:
// API endpoint latency/throughput, upstream catalog call outcomes, cache
// efficiency, circuit-breaker state, and the activity event bus.

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Upstream Catalog Adapter Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream catalog provider call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Total number of upstream catalog provider errors",
		},
		[]string{"provider", "kind"},
	)

	// Smart Search Engine Metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "smartSearch end-to-end duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchSingleFlightCollapsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_single_flight_collapsed_total",
			Help: "Total number of smartSearch calls that joined an in-flight computation instead of issuing their own",
		},
	)

	// Personalized Reranker Metrics
	RerankerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reranker_duration_seconds",
			Help:    "Reranker.Rerank duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RerankerFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reranker_fallbacks_total",
			Help: "Total number of reranker passes that fell back to the rule-scored list after an error",
		},
	)

	// Recommendation Generator Metrics
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation Generator pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"}, // "recommend", "next"
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "search_fresh", "search_stale", "catalog_lookup"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or capacity)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics (per upstream catalog provider)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Activity Event Bus Metrics (NATS/Watermill fan-out)
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_published_total",
			Help: "Total number of activity events published to the event bus",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_consumed_total",
			Help: "Total number of activity events consumed by a derived-aggregate updater",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_events_deduplicated_total",
			Help: "Total number of redelivered activity events suppressed by the dedup cache",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activity_event_processing_duration_seconds",
			Help:    "Derived-aggregate update duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamCall records a single provider round trip.
func RecordUpstreamCall(provider, operation string, duration time.Duration, errKind string) {
	UpstreamRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	if errKind != "" {
		UpstreamErrors.WithLabelValues(provider, errKind).Inc()
	}
}

// RecordCacheHit/RecordCacheMiss record a lookup outcome for cacheType.
func RecordCacheHit(cacheType string)  { CacheHits.WithLabelValues(cacheType).Inc() }
func RecordCacheMiss(cacheType string) { CacheMisses.WithLabelValues(cacheType).Inc() }

// RecordCircuitBreakerTransition records a named breaker moving between
// states, per sony/gobreaker/v2's StateChangeHandler callback shape.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	var state float64
	switch to {
	case "half-open":
		state = 1
	case "open":
		state = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(state)
}
