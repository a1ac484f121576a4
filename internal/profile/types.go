// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package profile is the Activity & Profile Store adapter: it reads
// preferences, reads/aggregates activity events, and builds the
// RealtimeProfile the reranker consumes. The persisted state itself is an
// external "remote key-value tree" (spec'd by interface only); this
// package ships a badger-backed default implementation of that interface.
package profile

import "time"

// NamedArtist is a {id, name} favorite-artist reference.
type NamedArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Preferences is UserPreferences.
type Preferences struct {
	UID             string        `json:"uid"`
	Languages       []string      `json:"languages"`
	FavoriteArtists []NamedArtist `json:"favoriteArtists"`
	DisplayName     string        `json:"displayName,omitempty"`
	Email           string        `json:"email,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ActivityType enumerates the four logged activity kinds.
type ActivityType string

const (
	ActivitySearch      ActivityType = "search"
	ActivityPlay        ActivityType = "play"
	ActivitySkip        ActivityType = "skip"
	ActivitySearchClick ActivityType = "search_click"
)

// ActivityEvent is a single push-only log entry under a user's subtree.
type ActivityEvent struct {
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	SongID    string       `json:"songId,omitempty"`
	SongName  string       `json:"songName,omitempty"`
	Artist    string       `json:"artist,omitempty"`
	Language  string       `json:"language,omitempty"`
	Genre     string       `json:"genre,omitempty"`
	Query     string       `json:"query,omitempty"`
	Duration  int          `json:"duration,omitempty"`
	SkipTime  int          `json:"skipTime,omitempty"`
}

// SongAggregate is the ML-friendly per-song aggregate derived from the
// activity log: user_activity/{uid}/{songId}.
type SongAggregate struct {
	PlayCount     int       `json:"play_count"`
	SkipCount     int       `json:"skip_count"`
	SearchClicked int       `json:"search_clicked"`
	LastPlayed    time.Time `json:"last_played"`
	Affinity      float64   `json:"affinity"`
}

// recomputeAffinity recomputes the affinity score from its inputs: play weighs
// double, a search-click is a weak positive signal, a skip is a stronger
// negative signal.
func (a *SongAggregate) recomputeAffinity() {
	a.Affinity = float64(a.PlayCount)*2 + float64(a.SearchClicked)*0.75 - float64(a.SkipCount)*2.5
}

// SearchHistoryEntry is search_history/{uid}/{safeKey(query)}.
type SearchHistoryEntry struct {
	Query        string    `json:"query"`
	Count        int       `json:"count"`
	LastSearched time.Time `json:"lastSearched"`
}

// RealtimeProfile is built by the Profile Store on demand and cached by
// the reranker for 2 minutes.
type RealtimeProfile struct {
	UID               string
	Languages         []string
	LanguageAffinity  map[string]float64
	FavoriteArtists   []NamedArtist
	ArtistAffinity    map[string]float64
	SearchTerms       []string
	SongInteractions  map[string]SongInteraction
}

// SongInteraction is one entry of RealtimeProfile.songInteractions.
type SongInteraction struct {
	PlayCount  int
	SkipCount  int
	Affinity   float64
	LastPlayed time.Time
	Artist     string
	Language   string
}

const (
	MaxSearchTerms      = 40
	MaxSongInteractions = 500
)
