// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package supervisor

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/aurastream/corehub/internal/logging"
)

// KeepaliveService periodically pings a configured URL to keep a free-tier
// host from idling the process out. A ping failure is logged and retried
// on the next tick; it never stops the service.
type KeepaliveService struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	hc       *http.Client
	limiter  *rate.Limiter
}

// NewKeepaliveService builds a pinger for the given URL. interval and
// timeout are the caller's already-validated config values.
func NewKeepaliveService(url string, interval, timeout time.Duration) *KeepaliveService {
	return &KeepaliveService{
		url:      url,
		interval: interval,
		timeout:  timeout,
		hc:       &http.Client{},
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Serve implements suture.Service. It blocks, pinging url every interval,
// until ctx is canceled.
func (k *KeepaliveService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			k.ping(ctx)
		}
	}
}

func (k *KeepaliveService) ping(ctx context.Context) {
	if err := k.limiter.Wait(ctx); err != nil {
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, k.url, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("keepalive: build request failed")
		return
	}
	resp, err := k.hc.Do(req)
	if err != nil {
		logging.Warn().Err(err).Str("url", k.url).Msg("keepalive: ping failed")
		return
	}
	_ = resp.Body.Close()
}
