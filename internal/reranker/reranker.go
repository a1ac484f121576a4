// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package reranker implements the Personalized Reranker: a user-profile
// model built from activity aggregates, combined with a small fixed-weight
// feed-forward scorer, that reorders a candidate set for one user.
package reranker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/profile"
)

// RankerError wraps a reranker failure. Per the error-handling design,
// the recommendation pipeline logs this and falls back to the rule-scored
// list rather than aborting the request.
type RankerError struct {
	Cause error
}

func (e *RankerError) Error() string { return fmt.Sprintf("reranker: %v", e.Cause) }
func (e *RankerError) Unwrap() error  { return e.Cause }

// Context carries the request-scoped inputs to a rerank pass.
type Context struct {
	Query              string
	PreferredLanguages []string
	Mode               string
}

// Reranker owns the profile cache and reads profiles through a
// profile.Store.
type Reranker struct {
	store        profile.Store
	profileCache *profileCache
}

// New builds a Reranker over the given profile store.
func New(store profile.Store) *Reranker {
	return &Reranker{store: store, profileCache: newProfileCache()}
}

// Rerank is rerank(uid, songs, ctx): returns the same songs, reordered,
// each annotated with its _ranking. For uid == "" or empty songs, it is a
// pass-through.
func (r *Reranker) Rerank(ctx context.Context, uid string, songs []catalog.Song, rctx Context) ([]catalog.Song, error) {
	if uid == "" || len(songs) == 0 {
		return songs, nil
	}

	p, err := r.getRealtimeProfile(ctx, uid)
	if err != nil {
		return songs, &RankerError{Cause: err}
	}

	userVec := userEmbedding(p)
	queryTokens := strings.Fields(strings.ToLower(rctx.Query))
	n := len(songs)

	type scored struct {
		song  catalog.Song
		final float64
	}
	out := make([]scored, n)

	for i, s := range songs {
		f := extractFeatures(s, i, n, p, userVec, queryTokens, rctx.PreferredLanguages)
		nn := neuralScore(f.vector())

		rule := clamp(
			0.4*f.TextRank+
				0.3*((f.EmbeddingSimilarity+f.Language+f.Artist)/3)+
				0.2*f.Popularity+
				0.1*f.Interaction,
			0, 1,
		)
		final := rule*0.65 + nn*0.35

		song := s
		song.Ranking = &catalog.SongRanking{
			FinalScore:       round4(final),
			TextRankScore:    round4(f.TextRank),
			PreferenceMatch:  round4((f.EmbeddingSimilarity + f.Language + f.Artist) / 3),
			PopularityScore:  round4(f.Popularity),
			InteractionScore: round4(f.Interaction),
			NeuralScore:      round4(nn),
		}
		out[i] = scored{song: song, final: final}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].final > out[j].final })

	result := make([]catalog.Song, n)
	for i, s := range out {
		result[i] = s.song
	}
	return result, nil
}

// getRealtimeProfile fetches through the profile cache, building on miss.
func (r *Reranker) getRealtimeProfile(ctx context.Context, uid string) (profile.RealtimeProfile, error) {
	if p, ok := r.profileCache.get(uid); ok {
		return p, nil
	}
	p, err := r.store.BuildRealtimeProfile(ctx, uid)
	if err != nil {
		return profile.RealtimeProfile{}, err
	}
	r.profileCache.put(uid, p)
	return p, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
