// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package catalog

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/aurastream/corehub/internal/metrics"
)

// BreakerConfig holds the circuit breaker settings for a single
// upstream provider.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// breakerOpenError lets an open breaker be absorbed the same way a timeout
// is: callers never distinguish "upstream slow" from "upstream tripped".
func breakerOpenError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Kind: ErrTimeout, Cause: err}
}
