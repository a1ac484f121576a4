// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

/*
Package metrics provides Prometheus metrics collection and export for
observability.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Upstream catalog provider call outcomes
  - Smart Search, Reranker and Recommendation Generator durations
  - Circuit breaker state transitions
  - Cache hit/miss rates
  - Activity event bus throughput

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Upstream Catalog Metrics:
  - upstream_request_duration_seconds: Provider call latency (histogram)
    Labels: provider, operation
  - upstream_errors_total: Provider call failures (counter)
    Labels: provider, kind (timeout, status, parse)

Search / Rerank / Recommend Metrics:
  - search_duration_seconds: smartSearch duration (histogram)
  - search_single_flight_collapsed_total: calls that joined an in-flight
    computation instead of issuing their own (counter)
  - reranker_duration_seconds: rerank pass duration (histogram)
  - reranker_fallbacks_total: passes that fell back to rule scores (counter)
  - recommend_duration_seconds: generator pipeline duration (histogram)
    Labels: mode (recommend, next)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through a breaker (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

Cache Metrics:
  - cache_hits_total / cache_misses_total: Lookups (counter)
    Labels: cache_type (search_fresh, search_stale, catalog_lookup)
  - cache_entries: Current cached entries (gauge)
    Labels: cache_type
  - cache_evictions_total: Evictions (counter)
    Labels: cache_type

Activity Event Bus Metrics:
  - activity_events_published_total / activity_events_consumed_total
  - activity_events_deduplicated_total: redeliveries suppressed by the dedup cache
  - activity_event_processing_duration_seconds: derived-aggregate update latency

# Usage Example

	import (
	    "github.com/aurastream/corehub/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())
	    metrics.RecordAPIRequest("GET", "/api/search", "200", 23*time.Millisecond)
	}

# Cardinality Management

  - Endpoint labels are normalized (no query parameters)
  - Provider/cache-type labels are drawn from a small fixed set
  - Error kinds are limited to catalog.ErrorKind's three values

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/catalog: upstream call instrumentation
*/
package metrics
