// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package api provides HTTP handlers for the search, ranking and
// personalization core.
//
// errors.go - typed API error kinds. Each type's comment names the HTTP
// status its kind corresponds to; response.go does not inspect these
// types, and the handlers write those statuses through ResponseWriter
// directly.
package api

// InvalidInputError is a missing or malformed query parameter or request
// body field. Mapped to 400, no retry.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return "invalid input: " + e.Field + ": " + e.Message
	}
	return "invalid input: " + e.Message
}

// UnauthorizedError is a missing or invalid bearer token. Mapped to 401.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return "unauthorized: " + e.Reason
	}
	return "unauthorized"
}

// NotFoundError is returned when an authenticated user has no stored
// preferences yet. Mapped to 404 with a guidance message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}
