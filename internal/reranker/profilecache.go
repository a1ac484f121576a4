// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package reranker

import (
	"sync"
	"time"

	"github.com/aurastream/corehub/internal/profile"
)

const (
	ProfileCacheCapacity = 300
	ProfileCacheTTL      = 2 * time.Minute
)

// profileCacheEntry is a node in the profile cache's doubly-linked list:
// sentinel head/tail, O(1) Get/Add/evict.
type profileCacheEntry struct {
	key       string
	value     profile.RealtimeProfile
	prev      *profileCacheEntry
	next      *profileCacheEntry
	expiresAt time.Time
}

// profileCache is the reranker's per-uid profile cache: LRU cap 300, TTL 2
// minutes. Single-flight is not required here — an occasional double
// fetch on a cache miss race is tolerable.
type profileCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*profileCacheEntry
	head     *profileCacheEntry
	tail     *profileCacheEntry
}

func newProfileCache() *profileCache {
	c := &profileCache{
		capacity: ProfileCacheCapacity,
		ttl:      ProfileCacheTTL,
		items:    make(map[string]*profileCacheEntry, ProfileCacheCapacity),
		head:     &profileCacheEntry{},
		tail:     &profileCacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

func (c *profileCache) get(uid string) (profile.RealtimeProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[uid]
	if !ok {
		return profile.RealtimeProfile{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeLocked(e)
		delete(c.items, uid)
		return profile.RealtimeProfile{}, false
	}
	c.moveToFrontLocked(e)
	return e.value, true
}

func (c *profileCache) put(uid string, p profile.RealtimeProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[uid]; ok {
		e.value = p
		e.expiresAt = time.Now().Add(c.ttl)
		c.moveToFrontLocked(e)
		return
	}

	e := &profileCacheEntry{key: uid, value: p, expiresAt: time.Now().Add(c.ttl)}
	c.items[uid] = e
	c.addToFrontLocked(e)

	if len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest != c.head {
			c.removeLocked(oldest)
			delete(c.items, oldest.key)
		}
	}
}

func (c *profileCache) addToFrontLocked(e *profileCacheEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *profileCache) removeLocked(e *profileCacheEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *profileCache) moveToFrontLocked(e *profileCacheEntry) {
	c.removeLocked(e)
	c.addToFrontLocked(e)
}
