// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package api

import (
	"context"
	"net/http"

	"github.com/aurastream/corehub/internal/auth"
)

type ctxKey int

const uidKey ctxKey = 0

// RequireAuth validates the bearer token on every request through
// verifier and, on success, stores the resolved uid in the request
// context. A missing or invalid token writes 401 and stops the chain.
func RequireAuth(verifier auth.TokenVerifier, tokenCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r, tokenCookie)
			if err != nil {
				NewResponseWriter(w, r).Unauthorized("missing or malformed bearer token")
				return
			}
			subject, err := verifier.Verify(r.Context(), token)
			if err != nil {
				NewResponseWriter(w, r).Unauthorized("invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), uidKey, subject.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the uid when a bearer token is present and valid,
// but lets the request through either way. Used by GET /api/search, whose
// auth is documented as optional.
func OptionalAuth(verifier auth.TokenVerifier, tokenCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := auth.BearerToken(r, tokenCookie); err == nil {
				if subject, err := verifier.Verify(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), uidKey, subject.UID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UIDFromContext returns the uid stored by RequireAuth/OptionalAuth, or ""
// if no verified token was present.
func UIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(uidKey).(string)
	return uid
}
