// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSigningMethod is returned when a token's header advertises a
// signing algorithm other than the HMAC family this verifier accepts.
var ErrInvalidSigningMethod = errors.New("auth: unexpected token signing method")

// claims is the JWT payload this verifier expects: a subject (uid) plus
// the registered timing claims.
type claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTVerifier is the default/dev TokenVerifier backed by
// golang-jwt/jwt/v5, validating HS256-signed tokens against a shared
// secret. A production deployment verifies against the real external
// identity provider behind the same TokenVerifier interface instead.
type JWTVerifier struct {
	secret    []byte
	clockSkew time.Duration
}

// NewJWTVerifier builds a JWTVerifier. secret must be non-empty.
func NewJWTVerifier(secret string, clockSkew time.Duration) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret must not be empty")
	}
	return &JWTVerifier{secret: []byte(secret), clockSkew: clockSkew}, nil
}

// Verify parses and validates token, returning the subject it carries.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Subject, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSigningMethod, t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.clockSkew))
	if err != nil {
		return Subject{}, fmt.Errorf("auth: token validation failed: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UID == "" {
		return Subject{}, errors.New("auth: token carries no subject")
	}
	return Subject{UID: c.UID}, nil
}

// IssueToken mints an HS256 token for uid, expiring after ttl. Used by
// tests and local/dev tooling; production deployments mint tokens via the
// real identity provider, not this package.
func (v *JWTVerifier) IssueToken(uid string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(v.secret)
}
