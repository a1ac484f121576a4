// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package api

import "github.com/aurastream/corehub/internal/profile"

// PreferencesRequest is the body of POST /api/user/preferences. At least
// one of Languages or FavoriteArtists must be present.
type PreferencesRequest struct {
	Languages       []string             `json:"languages" validate:"omitempty,dive,required"`
	FavoriteArtists []profile.NamedArtist `json:"favoriteArtists" validate:"omitempty,dive"`
}

// HasContent reports whether the request carries at least one of the two
// optional fields, per the "at least one" requirement.
func (r PreferencesRequest) HasContent() bool {
	return len(r.Languages) > 0 || len(r.FavoriteArtists) > 0
}

// ActivityRequest is the body of POST /api/activity/:type. SongID is
// required for play/skip; the other fields are type-specific and
// optional.
type ActivityRequest struct {
	SongID   string `json:"songId" validate:"omitempty"`
	SongName string `json:"songName" validate:"omitempty"`
	Artist   string `json:"artist" validate:"omitempty"`
	Language string `json:"language" validate:"omitempty"`
	Genre    string `json:"genre" validate:"omitempty"`
	Query    string `json:"query" validate:"omitempty"`
	Duration int    `json:"duration" validate:"omitempty,min=0"`
	SkipTime int    `json:"skipTime" validate:"omitempty,min=0"`
}

// CurrentSongRequest is the currentSong payload inside
// POST /api/recommendations/next.
type CurrentSongRequest struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name" validate:"omitempty"`
	Language string   `json:"language" validate:"omitempty"`
	Genre    string   `json:"genre" validate:"omitempty"`
	Album    IDName   `json:"album" validate:"omitempty"`
	Artists  []IDName `json:"artists" validate:"omitempty,dive"`
}

// IDName is a generic {id, name} pair used by request bodies.
type IDName struct {
	ID   string `json:"id" validate:"omitempty"`
	Name string `json:"name" validate:"omitempty"`
}

// NextTrackRequest is the body of POST /api/recommendations/next.
type NextTrackRequest struct {
	CurrentSong CurrentSongRequest `json:"currentSong" validate:"required"`
	Limit       int                `json:"limit" validate:"omitempty,min=1,max=20"`
}
