// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

/*
Package cache provides the in-memory data structures used by the search,
catalog, and profile layers: an LFU cache for hot lookups, a probabilistic
deduplication cache for event ingestion, and an Aho-Corasick matcher for
multi-pattern substring stripping.

# LFU Cache

NewLFU returns a Cacher backed by an O(1) frequency-list LFU eviction
policy (LFUCache underneath). The catalog client uses it to cache song,
album and artists-by-language lookups:

	lookupCache := cache.NewLFU(4000, 5*time.Minute)
	lookupCache.Set(cacheKey, song)
	if v, ok := lookupCache.Get(cacheKey); ok {
	    song := v.(Song)
	}

Get/Set/SetWithTTL/Delete/Clear are all O(1) under a single mutex.
GetStats/HitRate expose the cache's own hit and miss counters.

# Deduplication Cache

BloomLRU combines a Bloom filter fast path with an exact-match LRU
fallback: a bloom negative is conclusive (never seen before), while a
bloom positive is verified against the LRU to rule out the filter's
false-positive rate. The profile event bus uses this to drop redelivered
activity messages without keeping every message key forever:

	dedup := cache.NewBloomLRU(10000, 10*time.Minute, 0.01)
	if dedup.IsDuplicate(eventKey) {
	    return // already processed
	}

# Pattern Matching

PatternMatcher wraps an Aho-Corasick automaton for matching many fixed
substrings against input text in a single pass. The search package uses
NewPatternMatcherFromSlice to strip noise words and language qualifiers
from query variants before ranking:

	noise := cache.NewPatternMatcherFromSlice([]string{"feat.", "remix", "live"}, nil)
	if noise.Contains(strings.ToLower(queryTerm)) {
	    // strip or down-weight this term
	}

# Thread Safety

All three structures are safe for concurrent use; each protects its
internal state with its own mutex.

# See Also

  - internal/catalog: uses NewLFU for resolved entity lookups
  - internal/profile: uses NewBloomLRU for event deduplication
  - internal/search: uses NewPatternMatcherFromSlice for query normalization
*/
package cache
