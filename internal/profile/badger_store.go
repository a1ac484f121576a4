// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/aurastream/corehub/internal/logging"
)

// BadgerStore is the default Store implementation, backed by an embedded
// badger key-value database. It realizes the "remote key-value tree"
// interface for single-node deployments and tests; a hosted deployment
// may swap in a different adapter behind the same Store interface.
type BadgerStore struct {
	db  *badger.DB
	bus *EventBus
}

// AttachEventBus wires an EventBus so future AppendActivity calls fan the
// event out through it instead of spawning updater goroutines directly.
// Call once during startup, after NewEventBus(store) has been built.
func (s *BadgerStore) AttachEventBus(bus *EventBus) { s.bus = bus }

// OpenBadgerStore opens (creating if absent) a badger database at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("profile: open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error { return s.db.Close() }

func keyPreferences(uid string) string { return "users/" + uid }
func keyActivity(uid, pushID string) string { return "users/" + uid + "/activity/" + pushID }
func keyActivityPrefix(uid string) string { return "users/" + uid + "/activity/" }
func keySearchHistory(uid, safe string) string { return "users/" + uid + "/search_history/" + safe }
func keyListeningHistory(uid, songID string) string {
	return "users/" + uid + "/listening_history/" + songID
}
func keyLiked(uid, songID string) string   { return "users/" + uid + "/liked_songs/" + songID }
func keySkipped(uid, songID string) string { return "users/" + uid + "/skipped_songs/" + songID }
func keyUserActivity(uid, songID string) string { return "user_activity/" + uid + "/" + songID }

func (s *BadgerStore) GetPreferences(_ context.Context, uid string) (Preferences, bool, error) {
	var prefs Preferences
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences(uid)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})
	if err != nil {
		return Preferences{}, false, &StoreError{Op: "GetPreferences", Cause: err}
	}
	return prefs, found, nil
}

func (s *BadgerStore) SavePreferences(_ context.Context, uid string, prefs Preferences) error {
	prefs.UID = uid
	prefs.UpdatedAt = time.Now()
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = prefs.UpdatedAt
	}
	buf, err := json.Marshal(prefs)
	if err != nil {
		return &StoreError{Op: "SavePreferences", Cause: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences(uid)), buf)
	})
	if err != nil {
		return &StoreError{Op: "SavePreferences", Cause: err}
	}
	return nil
}

// AppendActivity writes the durable activity-log entry first; this write
// must succeed. The three derived updates are then fired concurrently,
// each through its own transactional compare-and-swap, and their failures
// are logged but never fail the call.
func (s *BadgerStore) AppendActivity(ctx context.Context, uid string, event ActivityEvent) (string, error) {
	pushID := uuid.New().String()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	buf, err := json.Marshal(event)
	if err != nil {
		return "", &StoreError{Op: "AppendActivity", Cause: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyActivity(uid, pushID)), buf)
	})
	if err != nil {
		return "", &StoreError{Op: "AppendActivity", Cause: err}
	}

	if s.bus != nil {
		if err := s.bus.Publish(uid, event); err != nil {
			logging.Warn().Err(err).Str("uid", uid).Msg("profile: event bus publish failed, falling back to direct fan-out")
			s.fanOutDirect(uid, event)
		}
		return pushID, nil
	}
	s.fanOutDirect(uid, event)
	return pushID, nil
}

// fanOutDirect runs the three derived-update transactions concurrently
// without the event bus, used when no bus is attached (e.g. tests,
// single-process deployments that disable the ambient NATS wiring).
func (s *BadgerStore) fanOutDirect(uid string, event ActivityEvent) {
	done := make(chan struct{}, 3)
	go func() { s.updateSongAggregate(uid, event); done <- struct{}{} }()
	go func() { s.updateSearchHistory(uid, event); done <- struct{}{} }()
	go func() { s.updateProjections(uid, event); done <- struct{}{} }()
	for i := 0; i < 3; i++ {
		<-done
	}
}

// updateSongAggregate applies the transactional CAS update to both
// user_activity/{uid}/{songId} and users/{uid}/listening_history/{songId}.
func (s *BadgerStore) updateSongAggregate(uid string, event ActivityEvent) {
	if event.SongID == "" {
		return
	}
	now := time.Now()
	for _, key := range []string{keyUserActivity(uid, event.SongID), keyListeningHistory(uid, event.SongID)} {
		if err := casUpdate(s.db, key, func(agg *SongAggregate) { applyDerivedUpdates(agg, event, now) }); err != nil {
			logging.Warn().Err(err).Str("uid", uid).Str("songId", event.SongID).Msg("profile: song aggregate update failed")
		}
	}
}

func (s *BadgerStore) updateSearchHistory(uid string, event ActivityEvent) {
	if event.Type != ActivitySearch || event.Query == "" {
		return
	}
	key := keySearchHistory(uid, SafeKey(strings.ToLower(strings.TrimSpace(event.Query))))
	err := s.db.Update(func(txn *badger.Txn) error {
		var entry SearchHistoryEntry
		item, err := txn.Get([]byte(key))
		if err == nil {
			if verr := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); verr != nil {
				return verr
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		entry.Query = event.Query
		entry.Count++
		entry.LastSearched = time.Now()
		buf, merr := json.Marshal(entry)
		if merr != nil {
			return merr
		}
		return txn.Set([]byte(key), buf)
	})
	if err != nil {
		logging.Warn().Err(err).Str("uid", uid).Msg("profile: search history update failed")
	}
}

func (s *BadgerStore) updateProjections(uid string, event ActivityEvent) {
	if event.SongID == "" {
		return
	}
	var key string
	switch event.Type {
	case ActivityPlay:
		key = keyLiked(uid, event.SongID)
	case ActivitySkip:
		key = keySkipped(uid, event.SongID)
	default:
		return
	}
	buf, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	}); err != nil {
		logging.Warn().Err(err).Str("uid", uid).Msg("profile: projection update failed")
	}
}

// casUpdate reads, mutates, and writes back an aggregate using badger's
// optimistic transaction conflict detection, retrying on ErrConflict so
// concurrent writes to the same derived path don't clobber each other.
func casUpdate(db *badger.DB, key string, mutate func(*SongAggregate)) error {
	for attempt := 0; attempt < 5; attempt++ {
		err := db.Update(func(txn *badger.Txn) error {
			var agg SongAggregate
			item, err := txn.Get([]byte(key))
			if err == nil {
				if verr := item.Value(func(val []byte) error { return json.Unmarshal(val, &agg) }); verr != nil {
					return verr
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			mutate(&agg)
			buf, merr := json.Marshal(agg)
			if merr != nil {
				return merr
			}
			return txn.Set([]byte(key), buf)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("profile: cas update exhausted retries for %s", key)
}

func (s *BadgerStore) ActivityHistory(_ context.Context, uid string, eventType ActivityType, limit int) ([]ActivityEvent, error) {
	var out []ActivityEvent
	prefix := []byte(keyActivityPrefix(uid))
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ev ActivityEvent
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &ev) }); err != nil {
				continue
			}
			if eventType != "" && ev.Type != eventType {
				continue
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Op: "ActivityHistory", Cause: err}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *BadgerStore) RecentEvents(ctx context.Context, uid string, eventType ActivityType, limit int) ([]ActivityEvent, error) {
	return s.ActivityHistory(ctx, uid, eventType, limit)
}

func (s *BadgerStore) RecentSkipIDs(ctx context.Context, uid string, limit int) ([]string, error) {
	events, err := s.ActivityHistory(ctx, uid, ActivitySkip, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e.SongID != "" {
			ids = append(ids, e.SongID)
		}
	}
	return ids, nil
}

func (s *BadgerStore) SongAggregate(_ context.Context, uid, songID string) (SongAggregate, error) {
	var agg SongAggregate
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyUserActivity(uid, songID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &agg) })
	})
	if err != nil {
		return SongAggregate{}, &StoreError{Op: "SongAggregate", Cause: err}
	}
	return agg, nil
}

func (s *BadgerStore) TopArtistPlayCounts(ctx context.Context, uid string, n int) (map[string]int, error) {
	events, err := s.ActivityHistory(ctx, uid, ActivityPlay, 0)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range events {
		if e.Artist != "" {
			counts[e.Artist]++
		}
	}
	if n > 0 && len(counts) > n {
		type kv struct {
			artist string
			count  int
		}
		kvs := make([]kv, 0, len(counts))
		for a, c := range counts {
			kvs = append(kvs, kv{a, c})
		}
		sort.Slice(kvs, func(i, j int) bool { return kvs[i].count > kvs[j].count })
		trimmed := make(map[string]int, n)
		for i := 0; i < n && i < len(kvs); i++ {
			trimmed[kvs[i].artist] = kvs[i].count
		}
		return trimmed, nil
	}
	return counts, nil
}
