// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package profile

import (
	"context"
	"sort"
	"strings"
	"time"
)

// BuildRealtimeProfile assembles a RealtimeProfile from preferences, the
// per-song aggregates, and recent activity, capping search terms to
// MaxSearchTerms and song interactions to MaxSongInteractions most recent.
func (s *BadgerStore) BuildRealtimeProfile(ctx context.Context, uid string) (RealtimeProfile, error) {
	prefs, _, err := s.GetPreferences(ctx, uid)
	if err != nil {
		return RealtimeProfile{}, err
	}

	profile := RealtimeProfile{
		UID:              uid,
		Languages:        prefs.Languages,
		LanguageAffinity: make(map[string]float64),
		FavoriteArtists:  prefs.FavoriteArtists,
		ArtistAffinity:   make(map[string]float64),
		SongInteractions: make(map[string]SongInteraction),
	}

	playEvents, err := s.ActivityHistory(ctx, uid, ActivityPlay, 0)
	if err != nil {
		return RealtimeProfile{}, err
	}
	skipEvents, err := s.ActivityHistory(ctx, uid, ActivitySkip, 0)
	if err != nil {
		return RealtimeProfile{}, err
	}
	searchEvents, err := s.ActivityHistory(ctx, uid, ActivitySearch, MaxSearchTerms*2)
	if err != nil {
		return RealtimeProfile{}, err
	}

	seenTerms := make(map[string]struct{})
	for _, e := range searchEvents {
		term := strings.ToLower(strings.TrimSpace(e.Query))
		if term == "" {
			continue
		}
		if _, ok := seenTerms[term]; ok {
			continue
		}
		seenTerms[term] = struct{}{}
		profile.SearchTerms = append(profile.SearchTerms, term)
		if len(profile.SearchTerms) >= MaxSearchTerms {
			break
		}
	}

	type interactionAccum struct {
		playCount, skipCount int
		lastPlayed           time.Time
		artist, language     string
	}
	acc := make(map[string]*interactionAccum)

	for _, e := range playEvents {
		if e.SongID == "" {
			continue
		}
		a, ok := acc[e.SongID]
		if !ok {
			a = &interactionAccum{}
			acc[e.SongID] = a
		}
		a.playCount++
		a.artist = e.Artist
		a.language = e.Language
		if e.Timestamp.After(a.lastPlayed) {
			a.lastPlayed = e.Timestamp
		}
		profile.LanguageAffinity[e.Language] += 2
		profile.ArtistAffinity[e.Artist] += 2
	}
	for _, e := range skipEvents {
		if e.SongID == "" {
			continue
		}
		a, ok := acc[e.SongID]
		if !ok {
			a = &interactionAccum{}
			acc[e.SongID] = a
		}
		a.skipCount++
		if a.artist == "" {
			a.artist = e.Artist
		}
		if a.language == "" {
			a.language = e.Language
		}
		profile.LanguageAffinity[e.Language] -= 2.5
		profile.ArtistAffinity[e.Artist] -= 2.5
	}

	type songWithTime struct {
		id string
		a  *interactionAccum
	}
	ordered := make([]songWithTime, 0, len(acc))
	for id, a := range acc {
		ordered = append(ordered, songWithTime{id, a})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].a.lastPlayed.After(ordered[j].a.lastPlayed) })
	if len(ordered) > MaxSongInteractions {
		ordered = ordered[:MaxSongInteractions]
	}
	for _, sw := range ordered {
		affinity := float64(sw.a.playCount)*2 - float64(sw.a.skipCount)*2.5
		profile.SongInteractions[sw.id] = SongInteraction{
			PlayCount:  sw.a.playCount,
			SkipCount:  sw.a.skipCount,
			Affinity:   affinity,
			LastPlayed: sw.a.lastPlayed,
			Artist:     sw.a.artist,
			Language:   sw.a.language,
		}
	}

	return profile, nil
}
