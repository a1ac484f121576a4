// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3857 {
		t.Errorf("Server.Port = %d, want 3857", cfg.Server.Port)
	}
	if cfg.Search.FreshTTL != 120*time.Second {
		t.Errorf("Search.FreshTTL = %v, want 120s", cfg.Search.FreshTTL)
	}
	if cfg.Search.StaleTTL != 20*time.Minute {
		t.Errorf("Search.StaleTTL = %v, want 20m", cfg.Search.StaleTTL)
	}
	if cfg.Search.IndexCapacity != 6000 {
		t.Errorf("Search.IndexCapacity = %d, want 6000", cfg.Search.IndexCapacity)
	}
	if cfg.Reranker.ProfileCacheCapacity != 300 {
		t.Errorf("Reranker.ProfileCacheCapacity = %d, want 300", cfg.Reranker.ProfileCacheCapacity)
	}
	if cfg.Reranker.ProfileCacheTTL != 2*time.Minute {
		t.Errorf("Reranker.ProfileCacheTTL = %v, want 2m", cfg.Reranker.ProfileCacheTTL)
	}
	if cfg.Keepalive.Interval != 240*time.Second {
		t.Errorf("Keepalive.Interval = %v, want 240s", cfg.Keepalive.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateServerPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port 0")
	}
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for port > 65535")
	}
}

func TestValidateProvidersURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Providers.Primary.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed primary base URL")
	}
	cfg.Providers.Primary.BaseURL = "https://primary.example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("well-formed primary base URL should validate, got: %v", err)
	}
}

func TestValidateSearchTTLOrdering(t *testing.T) {
	cfg := defaultConfig()
	cfg.Search.StaleTTL = cfg.Search.FreshTTL - time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when stale_ttl < fresh_ttl")
	}
}

func TestValidateSecurityJWTSecretLength(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "too-short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short jwt secret")
	}
	cfg.Security.JWTSecret = "a-very-long-secret-used-only-for-unit-testing-purposes"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("long jwt secret should validate, got: %v", err)
	}
}

func TestValidateKeepaliveMinimums(t *testing.T) {
	cfg := defaultConfig()
	cfg.Keepalive.URL = "https://keepalive.example.com"
	cfg.Keepalive.Interval = 5 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for keepalive interval below minimum")
	}
	cfg.Keepalive.Interval = 60 * time.Second
	cfg.Keepalive.Timeout = 100 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for keepalive timeout below minimum")
	}
}

func TestValidateLoggingLevelAndFormat(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognized log level")
	}
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognized log format")
	}
}

func TestEnvTransform(t *testing.T) {
	path, value := envTransform("KEEPALIVE_INTERVAL_MS", "240000")
	if path != "keepalive.interval" {
		t.Errorf("path = %q, want keepalive.interval", path)
	}
	if value != "240000ms" {
		t.Errorf("value = %v, want 240000ms", value)
	}

	path, value = envTransform("RECOMMEND_DEFAULT_LIMIT", "42")
	if path != "recommend.default_limit" {
		t.Errorf("path = %q, want recommend.default_limit", path)
	}
	if value != "42" {
		t.Errorf("value = %v, want 42", value)
	}
}
