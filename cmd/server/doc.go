// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

/*
Package main is the entry point for the music-catalog search, ranking, and
personalization server.

The server fronts two upstream music-catalog providers, maintains a local
song index and a two-tier result cache, reranks results per user from an
activity-derived profile, and generates general and next-track
recommendations.

# Application Architecture

	RootSupervisor ("corehub")
	├── BackgroundSupervisor ("background-layer")
	│   └── KeepaliveService (if KEEPALIVE_URL is set)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2, layered environment variables over defaults
 2. Logging: zerolog, JSON or console output
 3. Profile Store: embedded badger-backed key-value tree
 4. Activity Event Bus: embedded NATS JetStream + Watermill, fans a logged
    activity event out to the three derived-aggregate updaters
 5. Upstream Catalog Adapter: primary/fallback HTTP clients, each behind
    its own circuit breaker and rate limiter
 6. Local Song Index + Smart Search Engine
 7. Personalized Reranker and Recommendation Generator
 8. Token Verifier: the default JWT/HS256 implementation
 9. HTTP router and handlers
 10. Supervisor Tree: suture v4 process supervision

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file (COREHUB_CONFIG) > Defaults

Core environment variables:

	PORT=3857
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	PROVIDER_PRIMARY_BASE_URL=https://...
	PROVIDER_FALLBACK_BASE_URL=https://...

	JWT_SECRET=<32+ chars>
	STORE_PATH=./data/profile

	KEEPALIVE_URL=https://example.com/healthz
	KEEPALIVE_INTERVAL_MS=240000
	KEEPALIVE_TIMEOUT_MS=10000

See internal/config for the complete reference.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests up to the configured shutdown timeout
 3. Drains in-flight Smart Search background refreshes
 4. Closes the activity event bus and profile store
 5. Exits 0 on a clean stop, 1 on a startup or shutdown failure

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/catalog: Upstream catalog adapter
  - internal/search: Smart Search Engine
  - internal/reranker: Personalized Reranker
  - internal/recommend: Recommendation Generator
  - internal/profile: Activity & Profile Store adapter
*/
package main
