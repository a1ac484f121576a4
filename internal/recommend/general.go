// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/profile"
	"github.com/aurastream/corehub/internal/reranker"
	"github.com/aurastream/corehub/internal/search"
)

// GenerateRecommendations is generateRecommendations(prefs, uid): the
// general-mode pipeline.
func (g *Generator) GenerateRecommendations(ctx context.Context, prefs profile.Preferences, limit int) ([]catalog.Song, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxGeneralLimitClamp {
		limit = MaxGeneralLimitClamp
	}

	var (
		wg            sync.WaitGroup
		topArtists    map[string]int
		skipIDs       []string
		recentPlays   []profile.ActivityEvent
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		topArtists, _ = g.store.TopArtistPlayCounts(ctx, prefs.UID, 10)
	}()
	go func() {
		defer wg.Done()
		skipIDs, _ = g.store.RecentSkipIDs(ctx, prefs.UID, 100)
	}()
	go func() {
		defer wg.Done()
		recentPlays, _ = g.store.RecentEvents(ctx, prefs.UID, profile.ActivityPlay, 20)
	}()
	wg.Wait()

	recentPlayArtists := make([]string, 0, len(recentPlays))
	for _, e := range recentPlays {
		if e.Artist != "" {
			recentPlayArtists = append(recentPlayArtists, e.Artist)
		}
	}

	seeds := g.buildSeedQueries(ctx, prefs, recentPlayArtists)
	seedResults := g.searchSeeds(ctx, seeds, search.Options{PreferredLanguages: prefs.Languages})

	skipSet := make(map[string]struct{}, len(skipIDs))
	for _, id := range skipIDs {
		skipSet[id] = struct{}{}
	}
	favoriteArtists := make(map[string]struct{}, len(prefs.FavoriteArtists))
	for _, a := range prefs.FavoriteArtists {
		favoriteArtists[strings.ToLower(a.Name)] = struct{}{}
	}

	acc := make(map[string]scoredCandidate)
	for _, songs := range seedResults {
		mergeUnique(acc, songs, func(s catalog.Song) float64 {
			var score float64
			for _, a := range s.Artists {
				lower := strings.ToLower(a.Name)
				if _, ok := favoriteArtists[lower]; ok {
					score += 30
				}
				if playCount, ok := topArtists[a.Name]; ok {
					score += 5 * float64(playCount)
				}
			}
			if _, skipped := skipSet[s.ID]; skipped {
				score -= 100
			}
			if containsFold(prefs.Languages, s.Language) {
				score += 10
			}
			return score
		})
	}

	candidates := make([]scoredCandidate, 0, len(acc))
	for _, c := range acc {
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(prefs.Languages) > 0 {
		candidates = partitionByLanguage(candidates, prefs.Languages)
	}
	if len(candidates) > PreRerankCap {
		candidates = candidates[:PreRerankCap]
	}

	songs := make([]catalog.Song, len(candidates))
	ruleScores := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		songs[i] = c.song
		ruleScores[c.song.ID] = c.score
	}

	reranked, err := g.reranker.Rerank(ctx, prefs.UID, songs, reranker.Context{PreferredLanguages: prefs.Languages, Mode: "recommend"})
	if err != nil {
		logging.Warn().Err(err).Str("uid", prefs.UID).Msg("recommend: reranker pass failed, falling back to rule-scored list")
		reranked = songs
	}

	for i, s := range reranked {
		rule := ruleScores[s.ID]
		model := 0.0
		if s.Ranking != nil {
			model = s.Ranking.FinalScore
		}
		final := rule*0.6 + model*100*0.4
		if s.Ranking == nil {
			s.Ranking = &catalog.SongRanking{}
		}
		s.Ranking.FinalScore = math.Round(final*100) / 100
		reranked[i] = s
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Ranking.FinalScore > reranked[j].Ranking.FinalScore
	})

	if len(reranked) > PostRerankCap {
		reranked = reranked[:PostRerankCap]
	}
	if len(reranked) > limit {
		reranked = reranked[:limit]
	}
	return reranked, nil
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// partitionByLanguage orders in-preferred-language candidates first,
// others after, each preserving relative order.
func partitionByLanguage(candidates []scoredCandidate, preferred []string) []scoredCandidate {
	in := make([]scoredCandidate, 0, len(candidates))
	other := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if containsFold(preferred, c.song.Language) {
			in = append(in, c)
		} else {
			other = append(other, c)
		}
	}
	return append(in, other...)
}
