// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package recommend

import (
	"context"
	"sort"
	"strings"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/profile"
	"github.com/aurastream/corehub/internal/reranker"
	"github.com/aurastream/corehub/internal/search"
)

const recentExclusionWindow = 40

// GenerateNextTrack is generateNextTrack(uid, currentSong, limit).
func (g *Generator) GenerateNextTrack(ctx context.Context, uid string, current CurrentSong, limit int) ([]catalog.Song, error) {
	if limit <= 0 || limit > NextTrackMaxLimit {
		limit = NextTrackMaxLimit
	}

	current = g.enrichCurrentSong(ctx, current)
	currentArtistKeys := artistKeys(current.Artists)
	currentCanonical := canonicalTitle(current.Name)

	exclusion := g.buildRecentExclusion(ctx, uid, current.ID)

	seeds := buildNextTrackSeeds(current)
	results := g.searchSeeds(ctx, seeds, search.Options{PreferredLanguages: singleLang(current.Language), WaitForFresh: false})

	merged := make(map[string]catalog.Song)
	for _, songs := range results {
		for _, s := range songs {
			if _, ok := merged[s.ID]; !ok {
				merged[s.ID] = s
			}
		}
	}

	type ranked struct {
		song  catalog.Song
		score float64
	}
	var candidates []ranked
	for _, s := range merged {
		if !passesHardFilters(s, current, currentArtistKeys, currentCanonical, exclusion) {
			continue
		}
		s.NextReason = &catalog.NextReason{
			SameLanguage: strings.EqualFold(s.Language, current.Language),
			// catalog.Song carries no genre field; genre-based scoring is
			// informational only and always reports false here.
			SameGenre:  false,
			Popularity: popularity01(s.Popularity),
		}
		candidates = append(candidates, ranked{song: s, score: nextTrackRuleScore(s, current)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	topN := 4 * limit
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	songs := make([]catalog.Song, len(candidates))
	for i, c := range candidates {
		songs[i] = c.song
	}

	reranked, err := g.reranker.Rerank(ctx, uid, songs, reranker.Context{PreferredLanguages: singleLang(current.Language), Mode: "next"})
	if err != nil {
		logging.Warn().Err(err).Str("uid", uid).Msg("recommend: next-track reranker pass failed, falling back to rule-scored list")
		reranked = songs
	}

	if len(reranked) > limit {
		reranked = reranked[:limit]
	}
	return reranked, nil
}

// enrichCurrentSong calls songById to fill in thin metadata; failure is
// ignored and the thin record is used as-is.
func (g *Generator) enrichCurrentSong(ctx context.Context, current CurrentSong) CurrentSong {
	if current.Language != "" && current.Genre != "" && len(current.Artists) > 0 && current.Album.ID != "" {
		return current
	}
	full, err := g.client.SongByID(ctx, current.ID)
	if err != nil {
		logging.Warn().Err(err).Str("songId", current.ID).Msg("recommend: currentSong enrichment failed")
		return current
	}
	if current.Language == "" {
		current.Language = full.Language
	}
	if len(current.Artists) == 0 {
		current.Artists = full.Artists
	}
	if current.Album.ID == "" {
		current.Album = full.Album
	}
	if current.Name == "" {
		current.Name = full.Name
	}
	return current
}

// buildRecentExclusion is last 40 plays ∪ last 40 skips ∪ {currentSong.id}.
func (g *Generator) buildRecentExclusion(ctx context.Context, uid, currentID string) map[string]struct{} {
	exclusion := map[string]struct{}{currentID: {}}
	plays, _ := g.store.RecentEvents(ctx, uid, profile.ActivityPlay, recentExclusionWindow)
	for _, e := range plays {
		if e.SongID != "" {
			exclusion[e.SongID] = struct{}{}
		}
	}
	skips, _ := g.store.RecentEvents(ctx, uid, profile.ActivitySkip, recentExclusionWindow)
	for _, e := range skips {
		if e.SongID != "" {
			exclusion[e.SongID] = struct{}{}
		}
	}
	return exclusion
}

// buildNextTrackSeeds builds the ≤6 seed queries in order: "Top <lang>
// <genre>", "<lang> <genre>", "Top <lang>", "Latest <lang>", "<lang>",
// "Top <genre>", title. If empty, falls back to "Top Hindi songs".
func buildNextTrackSeeds(current CurrentSong) []string {
	lang, genre := current.Language, current.Genre
	var seeds []string
	if lang != "" && genre != "" {
		seeds = append(seeds, "Top "+lang+" "+genre)
		seeds = append(seeds, lang+" "+genre)
	}
	if lang != "" {
		seeds = append(seeds, "Top "+lang)
		seeds = append(seeds, "Latest "+lang)
		seeds = append(seeds, lang)
	}
	if genre != "" {
		seeds = append(seeds, "Top "+genre)
	}
	if current.Name != "" {
		seeds = append(seeds, current.Name)
	}
	seeds = dedupe(seeds)
	if len(seeds) > 6 {
		seeds = seeds[:6]
	}
	if len(seeds) == 0 {
		seeds = []string{"Top Hindi songs"}
	}
	return seeds
}

func artistKeys(artists []catalog.NamedEntity) map[string]struct{} {
	keys := make(map[string]struct{}, len(artists)*2)
	for _, a := range artists {
		if a.ID != "" {
			keys["id:"+a.ID] = struct{}{}
		}
		if a.Name != "" {
			keys["name:"+strings.ToLower(strings.TrimSpace(a.Name))] = struct{}{}
		}
	}
	return keys
}

func artistsDisjoint(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return false
		}
	}
	return true
}

// passesHardFilters applies every hard playback-continuity constraint.
func passesHardFilters(s catalog.Song, current CurrentSong, currentArtistKeys map[string]struct{}, currentCanonical string, exclusion map[string]struct{}) bool {
	if current.Language != "" && !strings.EqualFold(s.Language, current.Language) {
		return false
	}
	if _, excluded := exclusion[s.ID]; excluded {
		return false
	}
	if !artistsDisjoint(artistKeys(s.Artists), currentArtistKeys) {
		return false
	}
	if current.Album.ID != "" && s.Album.ID == current.Album.ID {
		return false
	}
	if current.Album.Name != "" && strings.EqualFold(s.Album.Name, current.Album.Name) {
		return false
	}
	candidateCanonical := canonicalTitle(s.Name)
	if isTitleSupersetOrEqual(candidateCanonical, currentCanonical) {
		return false
	}
	return true
}

// nextTrackRuleScore applies the rule pre-score: +120 same language,
// +40*popularity, +8 if year >= 2020 else +4 if >= 2015. It adds no genre
// term, full or partial: catalog.Song carries no genre to compare.
func nextTrackRuleScore(s catalog.Song, current CurrentSong) float64 {
	var score float64
	if strings.EqualFold(s.Language, current.Language) {
		score += 120
	}
	score += 40 * popularity01(s.Popularity)
	switch {
	case s.Year >= 2020:
		score += 8
	case s.Year >= 2015:
		score += 4
	}
	return score
}

func popularity01(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	v := raw / 100
	if v > 1 {
		v = 1
	}
	return v
}

func singleLang(lang string) []string {
	if lang == "" {
		return nil
	}
	return []string{lang}
}
