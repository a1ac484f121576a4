// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package config

import (
	"os"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable that points at an
// optional YAML config file. When unset, DefaultConfigPaths is tried.
const ConfigPathEnvVar = "COREHUB_CONFIG"

// DefaultConfigPaths are tried, in order, when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{
	"./corehub.yaml",
	"./config/corehub.yaml",
	"/etc/corehub/corehub.yaml",
}

var (
	instance *koanf.Koanf
	once     sync.Once
)

// GetKoanfInstance returns the process-wide koanf instance populated by the
// most recent LoadWithKoanf call, for callers (e.g. a /debug/config route)
// that want to inspect the merged keys.
func GetKoanfInstance() *koanf.Koanf {
	once.Do(func() { instance = koanf.New(".") })
	return instance
}

// LoadWithKoanf loads configuration in three layers — struct defaults, then
// an optional YAML file, then environment variables — and validates the
// merged result.
func LoadWithKoanf() (*Config, error) {
	once.Do(func() { instance = koanf.New(".") })
	k := instance

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, err
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransform), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first readable config file, checking
// ConfigPathEnvVar then DefaultConfigPaths.
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// legacyEnvMap maps flat, legacy-shaped environment variable names onto the
// dotted koanf paths they set. Unmapped env vars fall through to the
// lower-cased, dot-separated default koanf derives from the name.
var legacyEnvMap = map[string]string{
	"PORT":                    "server.port",
	"SERVER_PORT":             "server.port",
	"SERVER_READ_TIMEOUT":     "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":    "server.write_timeout",
	"SERVER_IDLE_TIMEOUT":     "server.idle_timeout",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",

	"PROVIDER_PRIMARY_BASE_URL":   "providers.primary.base_url",
	"PROVIDER_PRIMARY_TIMEOUT":    "providers.primary.timeout",
	"PROVIDER_PRIMARY_RPS":        "providers.primary.requests_per_second",
	"PROVIDER_FALLBACK_BASE_URL":  "providers.fallback.base_url",
	"PROVIDER_FALLBACK_TIMEOUT":   "providers.fallback.timeout",
	"PROVIDER_FALLBACK_RPS":       "providers.fallback.requests_per_second",
	"PROVIDER_LOOKUP_TIMEOUT":     "providers.lookup_timeout",

	"SEARCH_INDEX_CAPACITY":    "search.index_capacity",
	"SEARCH_FRESH_TTL":         "search.fresh_ttl",
	"SEARCH_STALE_TTL":         "search.stale_ttl",
	"MAX_SMART_RESULTS":        "search.max_smart_results",
	"SMART_MIN_RESULTS":        "search.smart_min_results",
	"SMART_MAX_LATENCY_MS":     "search.smart_max_latency",

	"RERANKER_PROFILE_CACHE_CAPACITY": "reranker.profile_cache_capacity",
	"RERANKER_PROFILE_CACHE_TTL":      "reranker.profile_cache_ttl",

	"RECOMMEND_DEFAULT_LIMIT":     "recommend.default_limit",
	"RECOMMEND_MAX_GENERAL_LIMIT": "recommend.max_general_limit",
	"RECOMMEND_NEXT_TRACK_LIMIT":  "recommend.next_track_limit",

	"STORE_PATH": "store.path",

	"JWT_SECRET":          "security.jwt_secret",
	"SECURITY_JWT_SECRET": "security.jwt_secret",
	"TOKEN_COOKIE":        "security.token_cookie",

	"LOG_LEVEL":     "logging.level",
	"LOG_FORMAT":    "logging.format",
	"LOG_CALLER":    "logging.caller",
	"LOG_TIMESTAMP": "logging.timestamp",

	"KEEPALIVE_URL":          "keepalive.url",
	"KEEPALIVE_INTERVAL_MS":  "keepalive.interval",
	"KEEPALIVE_TIMEOUT_MS":   "keepalive.timeout",
}

// msEnvVars names legacy *_MS environment variables whose raw value is a
// plain millisecond integer rather than a Go duration string; their value
// is rewritten with an "ms" suffix so the duration decode hook accepts it.
var msEnvVars = map[string]bool{
	"KEEPALIVE_INTERVAL_MS": true,
	"KEEPALIVE_TIMEOUT_MS":  true,
	"SMART_MAX_LATENCY_MS":  true,
}

// envTransform maps an environment variable name onto its koanf path,
// consulting legacyEnvMap first for names that don't follow the
// SECTION_SUBSECTION_FIELD convention koanf would otherwise derive, and
// rewrites bare-millisecond legacy values into "<n>ms" duration strings.
func envTransform(name, value string) (string, interface{}) {
	path, ok := legacyEnvMap[name]
	if !ok {
		path = strings.ToLower(strings.ReplaceAll(name, "_", "."))
	}
	if msEnvVars[name] {
		return path, value + "ms"
	}
	return path, value
}
