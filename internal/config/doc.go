// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

/*
Package config provides centralized configuration management for the
search, ranking and personalization core.

# Configuration Sources

Configuration loads in three layers, each overriding the last:

  - Struct defaults (defaultConfig)
  - An optional YAML file (COREHUB_CONFIG, or one of DefaultConfigPaths)
  - Environment variables, via a legacy-name transform for the variables
    documented below

# Environment Variables

	PORT / SERVER_PORT                  HTTP listen port (default 3857)
	PROVIDER_PRIMARY_BASE_URL           primary catalog provider base URL
	PROVIDER_PRIMARY_TIMEOUT            primary provider per-call timeout
	PROVIDER_PRIMARY_RPS                primary provider outbound rate limit
	PROVIDER_FALLBACK_BASE_URL          fallback catalog provider base URL
	PROVIDER_FALLBACK_TIMEOUT           fallback provider per-call timeout
	PROVIDER_FALLBACK_RPS               fallback provider outbound rate limit
	SEARCH_FRESH_TTL / SEARCH_STALE_TTL search.fresh_ttl / search.stale_ttl
	MAX_SMART_RESULTS                   search.max_smart_results

The search.* keys other than index_capacity are loaded and validated, but
the search engine does not read them: its cache tiers and result limits are
the fixed constants of package search.
	JWT_SECRET                          bearer-token signing secret (HS256)
	STORE_PATH                          embedded KV store data directory
	LOG_LEVEL / LOG_FORMAT               structured logger settings
	KEEPALIVE_URL                       keepalive ping target
	KEEPALIVE_INTERVAL_MS               keepalive ping interval (min 60000)
	KEEPALIVE_TIMEOUT_MS                keepalive ping timeout (min 1000)

Any other variable is lower-cased with every underscore turned into a dot
(e.g. LOGGING_LEVEL -> logging.level). A key whose field name itself holds an
underscore is therefore reachable only through a mapped name, e.g.
RECOMMEND_DEFAULT_LIMIT -> recommend.default_limit.
*/
package config
