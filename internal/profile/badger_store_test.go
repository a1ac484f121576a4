// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package profile

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetPreferences_MissingUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, found, err := s.GetPreferences(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for a user never saved")
	}
}

func TestSavePreferences_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prefs := Preferences{Languages: []string{"hindi"}, DisplayName: "Riya"}
	if err := s.SavePreferences(ctx, "u1", prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, found, err := s.GetPreferences(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("GetPreferences: found=%v err=%v", found, err)
	}
	if got.UID != "u1" || got.DisplayName != "Riya" || len(got.Languages) != 1 {
		t.Errorf("round-tripped preferences = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("SavePreferences should stamp CreatedAt/UpdatedAt")
	}
}

func TestAppendActivity_WithoutBusFansOutDerivedUpdatesDirectly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pushID, err := s.AppendActivity(ctx, "u1", ActivityEvent{
		Type: ActivityPlay, SongID: "s1", Artist: "Arijit Singh", Language: "hindi",
	})
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if pushID == "" {
		t.Error("expected a non-empty push id")
	}

	events, err := s.ActivityHistory(ctx, "u1", ActivityPlay, 0)
	if err != nil || len(events) != 1 {
		t.Fatalf("ActivityHistory: events=%v err=%v", events, err)
	}

	agg, err := s.SongAggregate(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("SongAggregate: %v", err)
	}
	if agg.PlayCount != 1 {
		t.Errorf("PlayCount = %d, want 1 (fanOutDirect blocks until the derived update completes)", agg.PlayCount)
	}
}

func TestActivityHistory_FiltersByTypeAndOrdersMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)
	recent := time.Now()
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivityPlay, SongID: "old", Timestamp: old})
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivityPlay, SongID: "new", Timestamp: recent})
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivitySkip, SongID: "skipped", Timestamp: recent})

	events, err := s.ActivityHistory(ctx, "u1", ActivityPlay, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].SongID != "new" {
		t.Errorf("events[0].SongID = %q, want the most recent event first", events[0].SongID)
	}
}

func TestActivityHistory_LimitTrims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivityPlay, SongID: "s"})
	}
	events, err := s.ActivityHistory(ctx, "u1", ActivityPlay, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("len(events) = %d, want 2", len(events))
	}
}

func TestRecentSkipIDs_CollectsOnlySongIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivitySkip, SongID: "s1"})
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivitySkip, SongID: "s2"})

	ids, err := s.RecentSkipIDs(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("len(ids) = %d, want 2", len(ids))
	}
}

func TestTopArtistPlayCounts_RanksDescendingAndTrims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivityPlay, SongID: "a", Artist: "Arijit Singh"})
	}
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{Type: ActivityPlay, SongID: "b", Artist: "Shreya Ghoshal"})

	counts, err := s.TopArtistPlayCounts(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("len(counts) = %d, want 1 (trimmed to n)", len(counts))
	}
	if counts["Arijit Singh"] != 3 {
		t.Errorf("counts = %v, want Arijit Singh: 3 as the top artist", counts)
	}
}

func TestBuildRealtimeProfile_AggregatesPreferencesAndInteractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SavePreferences(ctx, "u1", Preferences{Languages: []string{"hindi"}}); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{
		Type: ActivityPlay, SongID: "s1", Artist: "Arijit Singh", Language: "hindi",
	})
	_, _ = s.AppendActivity(ctx, "u1", ActivityEvent{
		Type: ActivitySearch, Query: "tum hi ho",
	})

	p, err := s.BuildRealtimeProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("BuildRealtimeProfile: %v", err)
	}
	if len(p.Languages) != 1 || p.Languages[0] != "hindi" {
		t.Errorf("Languages = %v", p.Languages)
	}
	if p.LanguageAffinity["hindi"] <= 0 {
		t.Errorf("LanguageAffinity[hindi] = %v, want positive after a play event", p.LanguageAffinity["hindi"])
	}
	if p.ArtistAffinity["Arijit Singh"] <= 0 {
		t.Errorf("ArtistAffinity[Arijit Singh] = %v, want positive", p.ArtistAffinity["Arijit Singh"])
	}
	if len(p.SearchTerms) != 1 || p.SearchTerms[0] != "tum hi ho" {
		t.Errorf("SearchTerms = %v", p.SearchTerms)
	}
	si, ok := p.SongInteractions["s1"]
	if !ok || si.PlayCount != 1 {
		t.Errorf("SongInteractions[s1] = %+v, ok=%v", si, ok)
	}
}
