// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

/*
Package api provides the HTTP REST API layer: request handlers, response
envelope, typed domain errors, and the bearer-token auth middleware.

Key Components:

  - Router: chi route tree and middleware stack (request id, Prometheus
    metrics, recovery, CORS, per-IP rate limiting)
  - Handlers: one method per endpoint, delegating to catalog/search/
    reranker/recommend/profile
  - ResponseWriter: the standardized {success, data|error, meta} envelope
  - Typed errors: InvalidInputError, UnauthorizedError, NotFoundError,
    each documented with the HTTP status of its kind (handlers write
    those statuses through ResponseWriter, not by returning these types)

Routes:

  - GET  /healthz, GET /health (redirect)
  - GET  /metrics (Prometheus text exposition)
  - GET  /api/search                     auth optional
  - GET  /api/songs/{id}                 auth optional
  - GET  /api/albums                     auth optional
  - GET  /api/artists/by-language        auth optional
  - GET  /api/artists/{id}/albums        auth optional
  - GET  /api/user/preferences           auth required
  - POST /api/user/preferences           auth required
  - POST /api/activity/{type}            auth required
  - GET  /api/activity/history           auth required
  - GET  /api/recommendations            auth required
  - POST /api/recommendations/next       auth required

Usage Example:

	handlers := api.NewHandlers(cfg, client, engine, index, rank, gen, store)
	router := api.NewRouter(handlers, verifier, cfg.Security.TokenCookie)
	http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port), router)

See Also:

  - internal/auth: TokenVerifier interface and the default JWT verifier
  - internal/catalog: upstream music-catalog adapter
  - internal/search: Smart Search Engine
  - internal/reranker: Personalized Reranker
  - internal/recommend: Recommendation Generator
  - internal/profile: Activity & Profile Store adapter
*/
package api
