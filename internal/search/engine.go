// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package search implements the Smart Search Engine: query normalization,
// multi-variant fan-out to upstream catalog APIs, a local in-memory
// inverted-lookup fast path, lexical+fuzzy scoring, deduplication, and a
// two-tier cache (fresh / stale-while-revalidate) with single-flight
// request coalescing.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/metrics"
	"github.com/aurastream/corehub/internal/songindex"
)

// Options configures a single smartSearch call.
type Options struct {
	WaitForFresh       bool
	PreferredLanguages []string
}

// Engine is the Smart Search Engine. It owns the cache, single-flight
// bookkeeping, and a WaitGroup tracking background refresh tasks so they
// can be drained on shutdown without being cancelled by any one request's
// context.
type Engine struct {
	client *catalog.Client
	index  *songindex.Index
	cache  *resultCache

	bg sync.WaitGroup
}

// New builds a Smart Search Engine over the given catalog client and
// local song index.
func New(client *catalog.Client, index *songindex.Index) *Engine {
	return &Engine{client: client, index: index, cache: newResultCache()}
}

// Wait blocks until every in-flight background refresh task has completed.
// Used by graceful shutdown.
func (e *Engine) Wait() { e.bg.Wait() }

// Search is smartSearch: given a query, produces a ranked, deduplicated
// list of at most MaxSmartResults Songs.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]catalog.Song, error) {
	normalized := Normalize(query)
	if normalized == "" {
		return nil, nil
	}
	key := cacheKey(normalized, opts.PreferredLanguages)

	if entry, state := e.cache.lookup(key); state != stateEvicted {
		switch state {
		case stateFresh:
			metrics.RecordCacheHit("search_fresh")
			return entry.data, nil
		case stateStale:
			metrics.RecordCacheHit("search_stale")
			if !opts.WaitForFresh {
				e.scheduleRefresh(key, normalized, opts)
				return entry.data, nil
			}
		}
	} else {
		metrics.RecordCacheMiss("search_fresh")
	}

	return e.computeOrJoin(ctx, key, normalized, opts)
}

// scheduleRefresh fires a background recomputation, coalesced via
// single-flight, that is not cancelled when the originating request
// returns.
func (e *Engine) scheduleRefresh(key, normalized string, opts Options) {
	call, isLeader := e.cache.beginSingleFlight(key)
	if !isLeader {
		return
	}
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		bgCtx := context.Background()
		songs, err := e.compute(bgCtx, normalized, opts)
		if err != nil {
			logging.Warn().Err(err).Str("query", normalized).Msg("search: background refresh failed")
		} else {
			e.cache.store(key, songs)
		}
		e.cache.completeSingleFlight(key, call, songs, err)
	}()
}

// computeOrJoin either leads a synchronous computation for key or awaits
// the in-flight leader's result.
func (e *Engine) computeOrJoin(ctx context.Context, key, normalized string, opts Options) ([]catalog.Song, error) {
	call, isLeader := e.cache.beginSingleFlight(key)
	if !isLeader {
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	songs, err := e.compute(ctx, normalized, opts)
	if err == nil {
		e.cache.store(key, songs)
	}
	e.cache.completeSingleFlight(key, call, songs, err)
	return songs, err
}

// compute runs the full computation algorithm: local-index fast path,
// upstream variant loop, final global pass, sort and truncate.
func (e *Engine) compute(ctx context.Context, normalized string, opts Options) ([]catalog.Song, error) {
	start := time.Now()

	if local := e.index.SearchLocal(normalized); songindex.CountTiered(local) >= SmartMinResults {
		return toSongs(localResultsToRanked(local)), nil
	}

	variants := GenerateVariants(normalized)
	ranked := make(map[string]Ranked)
	queryTokens := tokensOf(normalized)

	for i, variant := range variants {
		if ctxDone(ctx) {
			break
		}
		below := len(ranked) < SmartMinResults
		belowHalf := len(ranked) < SmartMinResults/2

		var wg sync.WaitGroup
		var mu sync.Mutex
		queryPrimary := true
		queryBroad := i < 2 || below
		queryFallback := i == 0 || belowHalf

		variantTokens := tokensOf(variant)

		if queryPrimary {
			wg.Add(1)
			go func() {
				defer wg.Done()
				page, err := e.client.PrimarySongs(ctx, variant, 1)
				if err != nil {
					logging.Warn().Err(err).Str("variant", variant).Msg("search: primary query failed")
					return
				}
				scored := scoreAll(page.Results, variant, variantTokens, SourcePrimary, i, opts.PreferredLanguages)
				for _, s := range scored {
					e.index.Upsert(s.Song)
				}
				mu.Lock()
				addRankedSongs(ranked, scored)
				mu.Unlock()
			}()
		}
		if queryBroad {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := e.client.BroadSearch(ctx, variant, 1)
				if err != nil {
					logging.Warn().Err(err).Str("variant", variant).Msg("search: broad query failed")
					return
				}
				scored := scoreAll(res.Songs, variant, variantTokens, SourceBroad, i, opts.PreferredLanguages)
				for _, s := range scored {
					e.index.Upsert(s.Song)
				}
				mu.Lock()
				addRankedSongs(ranked, scored)
				mu.Unlock()
			}()
		}
		if queryFallback {
			wg.Add(1)
			go func() {
				defer wg.Done()
				songs, err := e.client.FallbackSongs(ctx, variant)
				if err != nil {
					logging.Warn().Err(err).Str("variant", variant).Msg("search: fallback query failed")
					return
				}
				scored := scoreAll(songs, variant, variantTokens, SourceFallback, i, opts.PreferredLanguages)
				for _, s := range scored {
					e.index.Upsert(s.Song)
				}
				mu.Lock()
				addRankedSongs(ranked, scored)
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(ranked) >= SmartMinResults {
			break
		}
		if time.Since(start) >= SmartMaxLatency && len(ranked) > 0 {
			break
		}
	}

	if !hasExactMatch(ranked) {
		e.finalGlobalPass(ctx, normalized, queryTokens, opts, ranked)
	}

	return toSongs(sortRanked(ranked)), nil
}

func (e *Engine) finalGlobalPass(ctx context.Context, normalized string, queryTokens []string, opts Options, ranked map[string]Ranked) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := e.client.BroadSearch(ctx, normalized, 1)
		if err != nil {
			logging.Warn().Err(err).Str("query", normalized).Msg("search: final broad pass failed")
			return
		}
		scored := scoreAll(res.Songs, normalized, queryTokens, SourceBroad, 0, opts.PreferredLanguages)
		mu.Lock()
		addRankedSongs(ranked, scored)
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		songs, err := e.client.FallbackSongs(ctx, normalized)
		if err != nil {
			logging.Warn().Err(err).Str("query", normalized).Msg("search: final fallback pass failed")
			return
		}
		scored := scoreAll(songs, normalized, queryTokens, SourceFallback, 0, opts.PreferredLanguages)
		mu.Lock()
		addRankedSongs(ranked, scored)
		mu.Unlock()
	}()
	wg.Wait()
}

func scoreAll(songs []catalog.Song, query string, queryTokens []string, source Source, variantIndex int, preferredLanguages []string) []Ranked {
	out := make([]Ranked, 0, len(songs))
	for _, s := range songs {
		if r, ok := scoreSongMatch(s, query, queryTokens, source, variantIndex, preferredLanguages); ok {
			out = append(out, r)
		}
	}
	return out
}

func localResultsToRanked(local []songindex.Result) []Ranked {
	out := make([]Ranked, 0, len(local))
	for _, r := range local {
		out = append(out, Ranked{Song: r.Song, Tier: r.Tier, Score: r.Score})
	}
	return out
}

func sortRanked(ranked map[string]Ranked) []Ranked {
	out := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > MaxSmartResults {
		out = out[:MaxSmartResults]
	}
	return out
}

func toSongs(ranked []Ranked) []catalog.Song {
	out := make([]catalog.Song, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Song)
	}
	if len(out) > MaxSmartResults {
		out = out[:MaxSmartResults]
	}
	return out
}

func hasExactMatch(ranked map[string]Ranked) bool {
	for _, r := range ranked {
		if r.Tier == songindex.TierExact {
			return true
		}
	}
	return false
}

func tokensOf(s string) []string {
	return strings.Fields(s)
}

func ctxDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
