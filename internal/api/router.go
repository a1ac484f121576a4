// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurastream/corehub/internal/auth"
	"github.com/aurastream/corehub/internal/middleware"
)

// adaptLegacy wraps a func(http.HandlerFunc) http.HandlerFunc middleware
// (the shape the requestid/prometheus middleware use) into the
// func(http.Handler) http.Handler shape chi.Router.Use expects.
func adaptLegacy(m func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
	}
}

// NewRouter assembles the chi router for the whole API surface: global
// middleware (request id, metrics, recovery, CORS, rate limiting), the
// health/metrics endpoints, and the versioned domain routes behind the
// bearer-token verifier.
func NewRouter(h *Handlers, verifier auth.TokenVerifier, tokenCookie string) http.Handler {
	r := chi.NewRouter()

	r.Use(adaptLegacy(middleware.RequestID))
	r.Use(adaptLegacy(middleware.PrometheusMetrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Get("/healthz", h.Healthz)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(optional chi.Router) {
			optional.Use(OptionalAuth(verifier, tokenCookie))
			optional.Get("/search", h.Search)
			optional.Get("/songs/{id}", h.SongByID)
			optional.Get("/albums", h.Albums)
			optional.Get("/artists/by-language", h.ArtistsByLanguage)
			optional.Get("/artists/{id}/albums", h.ArtistAlbums)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(RequireAuth(verifier, tokenCookie))
			protected.Get("/user/preferences", h.GetPreferences)
			protected.Post("/user/preferences", h.SavePreferences)
			protected.Post("/activity/{type}", h.LogActivity)
			protected.Get("/activity/history", h.ActivityHistory)
			protected.Get("/recommendations", h.Recommendations)
			protected.Post("/recommendations/next", h.NextTrack)
		})
	})

	return r
}
