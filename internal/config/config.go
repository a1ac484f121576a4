// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package config provides centralized configuration management for the
// search, ranking and personalization core. It loads in layers — struct
// defaults, then an optional YAML file, then environment variables — via
// koanf, and validates the merged result before the rest of the process
// wires up against it.
package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Providers ProvidersConfig `koanf:"providers"`
	Search    SearchConfig    `koanf:"search"`
	Reranker  RerankerConfig  `koanf:"reranker"`
	Recommend RecommendConfig `koanf:"recommend"`
	Store     StoreConfig     `koanf:"store"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Keepalive KeepaliveConfig `koanf:"keepalive"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ProviderConfig describes one upstream music-catalog provider.
type ProviderConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// ProvidersConfig configures the two upstream catalog providers fronted by
// the Upstream Catalog Adapter.
type ProvidersConfig struct {
	Primary       ProviderConfig `koanf:"primary"`
	Fallback      ProviderConfig `koanf:"fallback"`
	LookupTimeout time.Duration  `koanf:"lookup_timeout"`
}

// SearchConfig configures the Smart Search Engine and its Local Song Index.
type SearchConfig struct {
	IndexCapacity    int           `koanf:"index_capacity"`
	FreshTTL         time.Duration `koanf:"fresh_ttl"`
	StaleTTL         time.Duration `koanf:"stale_ttl"`
	MaxSmartResults  int           `koanf:"max_smart_results"`
	SmartMinResults  int           `koanf:"smart_min_results"`
	SmartMaxLatency  time.Duration `koanf:"smart_max_latency"`
}

// RerankerConfig configures the Personalized Reranker.
type RerankerConfig struct {
	ProfileCacheCapacity int           `koanf:"profile_cache_capacity"`
	ProfileCacheTTL      time.Duration `koanf:"profile_cache_ttl"`
}

// RecommendConfig configures the Recommendation Generator's output sizes.
type RecommendConfig struct {
	DefaultLimit    int `koanf:"default_limit"`
	MaxGeneralLimit int `koanf:"max_general_limit"`
	NextTrackLimit  int `koanf:"next_track_limit"`
}

// StoreConfig configures the embedded persisted-state adapter.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// SecurityConfig configures bearer-token verification.
type SecurityConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenCookie   string        `koanf:"token_cookie"`
	ClockSkew     time.Duration `koanf:"clock_skew"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// KeepaliveConfig configures the keepalive pinger worker
// (KEEPALIVE_URL / KEEPALIVE_INTERVAL_MS / KEEPALIVE_TIMEOUT_MS).
type KeepaliveConfig struct {
	URL      string        `koanf:"url"`
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`
}

const (
	DefaultMinKeepaliveInterval = 60 * time.Second
	DefaultMinKeepaliveTimeout  = 1 * time.Second
)

// defaultConfig returns the baseline configuration applied before the YAML
// file and environment-variable layers are merged on top.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Providers: ProvidersConfig{
			Primary: ProviderConfig{
				Timeout:           2200 * time.Millisecond,
				RequestsPerSecond: 8,
			},
			Fallback: ProviderConfig{
				Timeout:           1800 * time.Millisecond,
				RequestsPerSecond: 8,
			},
			LookupTimeout: 1500 * time.Millisecond,
		},
		Search: SearchConfig{
			IndexCapacity:   6000,
			FreshTTL:        120 * time.Second,
			StaleTTL:        20 * time.Minute,
			MaxSmartResults: 40,
			SmartMinResults: 8,
			SmartMaxLatency: 3200 * time.Millisecond,
		},
		Reranker: RerankerConfig{
			ProfileCacheCapacity: 300,
			ProfileCacheTTL:      2 * time.Minute,
		},
		Recommend: RecommendConfig{
			DefaultLimit:    50,
			MaxGeneralLimit: 100,
			NextTrackLimit:  20,
		},
		Store: StoreConfig{
			Path: "./data/corehub-store",
		},
		Security: SecurityConfig{
			TokenCookie: "token",
			ClockSkew:   5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
		Keepalive: KeepaliveConfig{
			Interval: 240 * time.Second,
			Timeout:  10 * time.Second,
		},
	}
}
