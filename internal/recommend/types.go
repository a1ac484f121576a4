// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package recommend implements the Recommendation Generator: seed-query
// synthesis from preferences and activity, candidate collection via the
// Smart Search Engine, rule-based pre-scoring, then reranking. Includes a
// "next track" mode with hard playback constraints.
package recommend

import (
	"context"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/profile"
	"github.com/aurastream/corehub/internal/reranker"
	"github.com/aurastream/corehub/internal/search"
)

const (
	DefaultLimit = 20
	DefaultGeneralLimitClamp = 50
	MaxGeneralLimitClamp     = 100

	PreRerankCap  = 100
	PostRerankCap = 50

	NextTrackMaxLimit = 20
)

// CurrentSong is the minimal shape generateNextTrack needs from the
// client's currently-playing song; thin fields are enriched via
// catalog.Client.SongByID when absent.
type CurrentSong struct {
	ID       string
	Name     string
	Language string
	Genre    string
	Album    catalog.Album
	Artists  []catalog.NamedEntity
}

// Generator is the Recommendation Generator.
type Generator struct {
	engine   *search.Engine
	client   *catalog.Client
	store    profile.Store
	reranker *reranker.Reranker
}

// New builds a Generator wired to the Smart Search Engine, the catalog
// client (for currentSong enrichment), the profile store, and the
// reranker.
func New(engine *search.Engine, client *catalog.Client, store profile.Store, rr *reranker.Reranker) *Generator {
	return &Generator{engine: engine, client: client, store: store, reranker: rr}
}

// scoredCandidate tracks a merged candidate and its accumulated rule
// score through the general-mode pipeline.
type scoredCandidate struct {
	song  catalog.Song
	score float64
}

func mergeUnique(acc map[string]scoredCandidate, songs []catalog.Song, score func(catalog.Song) float64) {
	for _, s := range songs {
		delta := score(s)
		if existing, ok := acc[s.ID]; ok {
			existing.score += delta
			acc[s.ID] = existing
			continue
		}
		acc[s.ID] = scoredCandidate{song: s, score: 10 + delta}
	}
}

// searchSeeds runs smartSearch on each seed query in parallel; individual
// failures do not abort the batch (Promise.allSettled-equivalent).
func (g *Generator) searchSeeds(ctx context.Context, seeds []string, opts search.Options) [][]catalog.Song {
	results := make([][]catalog.Song, len(seeds))
	done := make(chan struct{}, len(seeds))
	for i, seed := range seeds {
		i, seed := i, seed
		go func() {
			defer func() { done <- struct{}{} }()
			songs, err := g.engine.Search(ctx, seed, opts)
			if err == nil {
				results[i] = songs
			}
		}()
	}
	for range seeds {
		<-done
	}
	return results
}
