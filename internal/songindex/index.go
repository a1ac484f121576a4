// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

// Package songindex is the Local Song Index: a bounded in-memory map of
// every Song seen in any upstream response, keyed by id, with precomputed
// searchable fields so scoring does no allocation beyond the score itself.
package songindex

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/aurastream/corehub/internal/catalog"
)

const (
	// DefaultCapacity bounds the number of entries the index holds.
	DefaultCapacity = 6000
	// MaxLocalResults caps the candidates returned per searchLocal call.
	MaxLocalResults = 120
)

// Entry is a LocalIndexEntry: a Song plus its precomputed searchable
// fields, owned exclusively by the Index.
type Entry struct {
	Song           catalog.Song
	Name           string
	Artists        string
	Album          string
	Haystack       string
	CompactName    string
	CompactHaystack string
	HaystackTokens []string
	UpdatedAt      time.Time
	LastAccessAt   time.Time
}

// Index is the bounded LRU map from song id to Entry.
type Index struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*Entry
}

// New builds an Index with the given capacity; zero uses DefaultCapacity.
func New(capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Index{capacity: capacity, entries: make(map[string]*Entry)}
}

// Upsert inserts or refreshes a Song's precomputed entry. Every Song
// returned by the Upstream Catalog Adapter, after normalization, is
// upserted here.
func (idx *Index) Upsert(s catalog.Song) {
	if s.ID == "" || s.Name == "" {
		return
	}
	now := time.Now()
	entry := buildEntry(s, now)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[s.ID] = entry
	if len(idx.entries) > idx.capacity {
		idx.evictOldestLocked()
	}
}

func buildEntry(s catalog.Song, now time.Time) *Entry {
	name, artists, album, haystack, compactName, compactHaystack, tokens := ComputeFields(s)
	return &Entry{
		Song:            s,
		Name:            name,
		Artists:         artists,
		Album:           album,
		Haystack:        haystack,
		CompactName:     compactName,
		CompactHaystack: compactHaystack,
		HaystackTokens:  tokens,
		UpdatedAt:       now,
		LastAccessAt:    now,
	}
}

// ComputeFields derives the precomputed searchable fields for a Song. It
// is exported so the Smart Search Engine can score upstream-sourced
// candidates with the exact same fields the index uses internally.
func ComputeFields(s catalog.Song) (name, artists, album, haystack, compactName, compactHaystack string, haystackTokens []string) {
	name = collapseWhitespace(strings.ToLower(s.Name))

	var artistNames []string
	for _, a := range s.Artists {
		artistNames = append(artistNames, a.Name)
	}
	artists = strings.ToLower(strings.Join(artistNames, " "))
	album = strings.ToLower(s.Album.Name)

	haystack = collapseWhitespace(strings.Join([]string{name, artists, album}, " "))
	compactName = compact(name)
	compactHaystack = compact(haystack)
	haystackTokens = strings.Fields(haystack)
	return
}

// evictOldestLocked removes the entry with the smallest LastAccessAt.
// Caller must hold idx.mu.
func (idx *Index) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	first := true
	for id, e := range idx.entries {
		if first || e.LastAccessAt.Before(oldestAt) {
			oldestID = id
			oldestAt = e.LastAccessAt
			first = false
		}
	}
	if oldestID != "" {
		delete(idx.entries, oldestID)
	}
}

// Len reports the current number of entries.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.entries)
}

// Get returns a read-only copy of the Entry for id, bumping LastAccessAt.
func (idx *Index) Get(id string) (Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.entries[id]
	if !ok {
		return Entry{}, false
	}
	e.LastAccessAt = time.Now()
	return *e, true
}

// snapshot returns copies of every entry touched, bumping their
// LastAccessAt. Used by searchLocal as a zero-I/O scan.
func (idx *Index) snapshot() []*Entry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	now := time.Now()
	out := make([]*Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		cp := *e
		cp.LastAccessAt = now
		e.LastAccessAt = now
		out = append(out, &cp)
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compact removes all non-alphanumeric runes, keeping unicode letters and
// digits only.
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
