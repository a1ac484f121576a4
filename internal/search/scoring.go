// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package search

import (
	"strings"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/songindex"
)

// Source identifies where a ranked candidate came from, driving the
// sourceWeight bonus.
type Source int

const (
	SourcePrimary Source = iota
	SourceBroad
	SourceFallback
	SourceLocalIndex
)

func (s Source) weight() float64 {
	switch s {
	case SourcePrimary:
		return 15
	case SourceBroad:
		return 8
	case SourceFallback:
		return 5
	case SourceLocalIndex:
		return 20
	default:
		return 0
	}
}

// Ranked is a scored, tiered candidate tracked during a single smartSearch
// computation.
type Ranked struct {
	Song  catalog.Song
	Tier  songindex.Tier
	Score float64
}

// scoreSongMatch assigns a numeric score and discrete match tier to a
// candidate Song against the normalized query, applying every bonus rule.
// Returns ok=false if the candidate should be rejected outright.
func scoreSongMatch(s catalog.Song, query string, queryTokens []string, source Source, variantIndex int, preferredLanguages []string) (Ranked, bool) {
	name, artists, album, haystack, compactName, compactHaystack, tokens := songindex.ComputeFields(s)
	compactQuery := compactOf(query)

	tier, base, ok := songindex.ClassifyMatch(name, compactName, haystack, compactHaystack, tokens, query, compactQuery, queryTokens)
	if !ok {
		return Ranked{}, false
	}

	score := base

	termsInName, termsInArtists, termsInAlbum, fuzzyHits := 0, 0, 0, 0
	for _, qt := range queryTokens {
		if strings.Contains(name, qt) {
			termsInName++
		}
		if strings.Contains(artists, qt) {
			termsInArtists++
		}
		if strings.Contains(album, qt) {
			termsInAlbum++
		} else {
			for _, ht := range tokens {
				if fuzzyTokenHit(qt, ht) {
					fuzzyHits++
					break
				}
			}
		}
	}
	score += float64(termsInName) * 20
	score += float64(termsInArtists) * 13
	score += float64(termsInAlbum) * 10
	score += float64(fuzzyHits) * 6

	if lang, ok := LanguageHint(queryTokens); ok {
		if lang == s.Language {
			score += 18
		} else {
			score -= 4
		}
	}

	if len(preferredLanguages) > 0 {
		if containsFold(preferredLanguages, s.Language) {
			score += 28
		} else {
			score -= 2
		}
	}

	score += source.weight()
	score -= float64(variantIndex) * 10

	if tier == songindex.TierFuzzy {
		score -= 10
	}

	effectiveTerms := len(queryTokens)
	totalTermHits := termsInName + termsInArtists + termsInAlbum
	if effectiveTerms >= 2 && totalTermHits == 0 && tier > songindex.TierContains {
		return Ranked{}, false
	}

	return Ranked{Song: s, Tier: tier, Score: score}, true
}

func fuzzyTokenHit(a, b string) bool {
	if a == "" || b == "" || a[0] != b[0] {
		return false
	}
	delta := len(a) - len(b)
	if delta < 0 {
		delta = -delta
	}
	max := 1
	switch {
	case len(a) >= 10:
		max = 3
	case len(a) >= 6:
		max = 2
	}
	return delta <= max
}

func compactOf(s string) string {
	_, _, _, _, compactName, _, _ := songindex.ComputeFields(catalog.Song{Name: s})
	return compactName
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// addRankedSongs merges new candidates into the accumulator by id,
// keeping the better-scoring entry on duplicates (matchTier, score).
func addRankedSongs(acc map[string]Ranked, candidates []Ranked) {
	for _, c := range candidates {
		existing, ok := acc[c.Song.ID]
		if !ok || better(c, existing) {
			acc[c.Song.ID] = c
		}
	}
}

func better(a, b Ranked) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.Score > b.Score
}
