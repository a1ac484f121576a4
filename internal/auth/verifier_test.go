// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package auth

import "net/http"

func newTestRequest(authHeader, cookieValue string) *http.Request {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	if cookieValue != "" {
		r.AddCookie(&http.Cookie{Name: "token", Value: cookieValue})
	}
	return r
}
