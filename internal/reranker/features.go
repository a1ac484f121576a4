// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package reranker

import (
	"math"
	"strings"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/profile"
)

// Features are the 8 per-song inputs to the neural head, all clamped to
// [0,1].
type Features struct {
	TextRank            float64
	EmbeddingSimilarity float64
	Language            float64
	Artist              float64
	Popularity          float64
	Interaction         float64
	SkipRisk            float64
	QueryIntent         float64
}

// vector returns the features in the fixed order the neural head expects.
func (f Features) vector() [8]float64 {
	return [8]float64{
		f.TextRank, f.EmbeddingSimilarity, f.Language, f.Artist,
		f.Popularity, f.Interaction, f.SkipRisk, f.QueryIntent,
	}
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// extractFeatures computes the 8 features for one candidate at its
// upstream-order index, given the user's profile, its embedding, and the
// query context.
func extractFeatures(s catalog.Song, index, n int, p profile.RealtimeProfile, userVec []float64, queryTokens, preferredLanguages []string) Features {
	var f Features

	if n > 1 {
		f.TextRank = clamp(1-float64(index)/float64(n-1), 0, 1)
	} else {
		f.TextRank = 1
	}

	f.EmbeddingSimilarity = similarity(userVec, songEmbedding(s))

	f.Language = languageScore(s.Language, p, preferredLanguages)
	f.Artist = artistScore(s.Artists, p)
	f.Popularity = popularityScore(s.Popularity)
	f.Interaction, f.SkipRisk = interactionScores(s.ID, p)
	f.QueryIntent = queryIntentScore(s, queryTokens)

	return f
}

func languageScore(songLanguage string, p profile.RealtimeProfile, preferredLanguages []string) float64 {
	matched := containsFold(preferredLanguages, songLanguage)
	base := 0.25
	if matched {
		base = 1.0
	}
	affinity := p.LanguageAffinity[strings.ToLower(songLanguage)]
	divisor := 10.0
	if matched {
		divisor = 12.0
	}
	adj := math.Min(0.35, math.Abs(affinity)/divisor)
	if affinity < 0 {
		adj = -adj
	}
	return clamp(base+adj, 0, 1)
}

func artistScore(artists []catalog.NamedEntity, p profile.RealtimeProfile) float64 {
	base := 0.1
	favHits := 0
	maxAbsAffinity := 0.0
	matchedAny := false
	for _, a := range artists {
		lower := strings.ToLower(a.Name)
		for _, fav := range p.FavoriteArtists {
			if strings.EqualFold(fav.Name, a.Name) {
				favHits++
				break
			}
		}
		if affinity, ok := p.ArtistAffinity[lower]; ok {
			matchedAny = true
			if math.Abs(affinity) > math.Abs(maxAbsAffinity) {
				maxAbsAffinity = affinity
			}
		}
	}
	base += 0.45 * float64(favHits)

	divisor := 12.0
	if matchedAny {
		divisor = 14.0
	}
	adj := math.Min(0.35, math.Abs(maxAbsAffinity)/divisor)
	if maxAbsAffinity < 0 {
		adj = -adj
	}
	return clamp(base+adj, 0, 1)
}

func popularityScore(raw float64) float64 {
	if raw <= 0 {
		return 0.45
	}
	return clamp(math.Log10(raw+1)/3.2, 0, 1)
}

func interactionScores(songID string, p profile.RealtimeProfile) (interaction, skipRisk float64) {
	si, ok := p.SongInteractions[songID]
	if !ok {
		return 0.35, 0.2
	}
	interaction = clamp(sigmoid(si.Affinity*0.35), 0, 1)
	total := si.PlayCount + si.SkipCount
	if total == 0 {
		skipRisk = 0.2
	} else {
		skipRisk = clamp(float64(si.SkipCount)/float64(total), 0, 1)
	}
	return interaction, skipRisk
}

func queryIntentScore(s catalog.Song, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	haystack := strings.ToLower(s.Name)
	for _, a := range s.Artists {
		haystack += " " + strings.ToLower(a.Name)
	}
	hits := 0
	for _, qt := range queryTokens {
		if strings.Contains(haystack, qt) {
			hits++
		}
	}
	return clamp(float64(hits)/float64(len(queryTokens)), 0, 1)
}
