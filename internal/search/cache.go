// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package search

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aurastream/corehub/internal/catalog"
)

const (
	FreshTTL = 2 * time.Minute
	StaleTTL = 20 * time.Minute

	MaxSmartResults    = 40
	SmartMinResults    = 8
	SmartMaxLatency    = 3200 * time.Millisecond
)

// cacheState classifies an entry's age.
type cacheState int

const (
	stateFresh cacheState = iota
	stateStale
	stateEvicted
)

// cacheEntry is the CacheEntry<Song list>: data plus both timestamps
// needed to derive freshness.
type cacheEntry struct {
	data         []catalog.Song
	updatedAt    time.Time
	lastAccessAt time.Time
}

func (e *cacheEntry) state(now time.Time) cacheState {
	age := now.Sub(e.updatedAt)
	switch {
	case age <= FreshTTL:
		return stateFresh
	case age <= StaleTTL:
		return stateStale
	default:
		return stateEvicted
	}
}

// resultCache is the Smart Search Engine's two-tier cache with
// single-flight coalescing: a per-key future stored in a sibling map,
// cleared on completion; both maps are guarded by one coarse mutex.
type resultCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done   chan struct{}
	result []catalog.Song
	err    error
}

func newResultCache() *resultCache {
	return &resultCache{
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]*inflightCall),
	}
}

// cacheKey builds the key `(normalized_query, sorted_preferred_languages | "_")`.
func cacheKey(normalizedQuery string, preferredLanguages []string) string {
	if len(preferredLanguages) == 0 {
		return normalizedQuery + "|_"
	}
	sorted := append([]string(nil), preferredLanguages...)
	sort.Strings(sorted)
	return normalizedQuery + "|" + strings.Join(sorted, ",")
}

// lookup returns the entry and its freshness state, bumping lastAccessAt
// on a hit.
func (c *resultCache) lookup(key string) (*cacheEntry, cacheState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, stateEvicted
	}
	now := time.Now()
	st := e.state(now)
	if st != stateEvicted {
		e.lastAccessAt = now
	}
	return e, st
}

// store writes a fresh entry for key. A failed refresh must never evict
// an existing stale entry, so callers only call store on success.
func (c *resultCache) store(key string, songs []catalog.Song) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	c.entries[key] = &cacheEntry{data: songs, updatedAt: now, lastAccessAt: now}
}

// beginSingleFlight registers this caller as the leader for key if none is
// in flight, returning (nil, true) when the caller must compute. If a
// computation is already in flight, returns its handle and false.
func (c *resultCache) beginSingleFlight(key string) (*inflightCall, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.inflight[key]; ok {
		return existing, false
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	return call, true
}

// completeSingleFlight records the result and clears the in-flight marker.
func (c *resultCache) completeSingleFlight(key string, call *inflightCall, result []catalog.Song, err error) {
	call.result = result
	call.err = err
	close(call.done)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}
