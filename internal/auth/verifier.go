// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package auth verifies the bearer token carried on every protected
// request. Verification against the real external identity provider is
// out of scope for this core; TokenVerifier is the seam a production
// deployment swaps an identity-provider-backed implementation behind.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrMissingToken is returned when a request carries no bearer token at
// all (no Authorization header, no fallback cookie).
var ErrMissingToken = errors.New("auth: missing bearer token")

// Subject is the verified identity carried by a validated token.
type Subject struct {
	UID string
}

// TokenVerifier validates the bearer token on a request and resolves it to
// a Subject. Implementations do not write to the response; callers map a
// non-nil error to 401.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// BearerToken extracts the token string from the Authorization header
// ("Bearer <token>"), falling back to the given cookie name when the
// header is absent.
func BearerToken(r *http.Request, cookieName string) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			token := strings.TrimSpace(header[len(prefix):])
			if token != "" {
				return token, nil
			}
		}
		return "", ErrMissingToken
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrMissingToken
}
