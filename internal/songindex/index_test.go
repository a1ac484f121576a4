// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package songindex

import (
	"testing"

	"github.com/aurastream/corehub/internal/catalog"
)

func song(id, name string) catalog.Song {
	return catalog.Song{ID: id, Name: name}
}

func TestUpsert_RejectsEmptyIDOrName(t *testing.T) {
	idx := New(10)
	idx.Upsert(catalog.Song{ID: "", Name: "x"})
	idx.Upsert(catalog.Song{ID: "x", Name: ""})
	if idx.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", idx.Len())
	}
}

func TestUpsert_EvictsOldestAccessedOverCapacity(t *testing.T) {
	idx := New(2)
	idx.Upsert(song("1", "one"))
	idx.Upsert(song("2", "two"))
	// Touch "1" so it is more recently accessed than "2".
	if _, ok := idx.Get("1"); !ok {
		t.Fatal("expected entry 1 to exist")
	}
	idx.Upsert(song("3", "three"))

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	if _, ok := idx.Get("2"); ok {
		t.Error("entry 2 should have been evicted as least recently accessed")
	}
	if _, ok := idx.Get("1"); !ok {
		t.Error("entry 1 should still be present")
	}
	if _, ok := idx.Get("3"); !ok {
		t.Error("entry 3 should be present")
	}
}

func TestComputeFields_LowercasesAndJoinsHaystack(t *testing.T) {
	s := catalog.Song{
		ID:   "1",
		Name: "Tum Hi Ho",
		Artists: []catalog.NamedEntity{
			{ID: "a1", Name: "Arijit Singh"},
		},
		Album: catalog.Album{Name: "Aashiqui 2"},
	}
	name, artists, album, haystack, compactName, compactHaystack, tokens := ComputeFields(s)

	if name != "tum hi ho" {
		t.Errorf("name = %q", name)
	}
	if artists != "arijit singh" {
		t.Errorf("artists = %q", artists)
	}
	if album != "aashiqui 2" {
		t.Errorf("album = %q", album)
	}
	if haystack != "tum hi ho arijit singh aashiqui 2" {
		t.Errorf("haystack = %q", haystack)
	}
	if compactName != "tumhiho" {
		t.Errorf("compactName = %q", compactName)
	}
	if compactHaystack == "" {
		t.Error("compactHaystack should not be empty")
	}
	if len(tokens) != 7 {
		t.Errorf("tokens = %v, want 7 tokens", tokens)
	}
}

func TestSearchLocal_EmptyQueryReturnsNil(t *testing.T) {
	idx := New(10)
	idx.Upsert(song("1", "Tum Hi Ho"))
	if got := idx.SearchLocal("  "); got != nil {
		t.Errorf("SearchLocal(blank) = %v, want nil", got)
	}
}

func TestSearchLocal_RanksExactAboveFuzzy(t *testing.T) {
	idx := New(10)
	idx.Upsert(song("exact", "Tum Hi Ho"))
	idx.Upsert(song("fuzzy", "Tum Hii Hoo"))
	idx.Upsert(song("unrelated", "Channa Mereya"))

	results := idx.SearchLocal("tum hi ho")
	if len(results) < 2 {
		t.Fatalf("expected at least 2 matches, got %d", len(results))
	}
	if results[0].Song.ID != "exact" {
		t.Errorf("top result = %s, want exact match first", results[0].Song.ID)
	}
	if results[0].Tier != TierExact {
		t.Errorf("top tier = %v, want TierExact", results[0].Tier)
	}
	for _, r := range results {
		if r.Song.ID == "unrelated" {
			t.Error("unrelated song should not have matched")
		}
	}
}

func TestCountTiered_ExcludesFuzzyAndRejected(t *testing.T) {
	results := []Result{
		{Tier: TierExact},
		{Tier: TierStartsWith},
		{Tier: TierContains},
		{Tier: TierFuzzy},
	}
	if got := CountTiered(results); got != 3 {
		t.Errorf("CountTiered() = %d, want 3", got)
	}
}
