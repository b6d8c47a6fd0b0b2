// Package cache is the process-local read shield in front of the durable
// session store. It is pure performance state: an entry's presence never
// extends a durable session's life, and the whole cache can be discarded at
// any time without affecting correctness. The entry TTL bounds how long a
// revocation elsewhere can remain invisible on this process.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/MrEthical07/goSession/session"
)

// Cache is a capacity-bounded, time-evicted map from session reference to
// record snapshot. Least-recently-used entries fall out at capacity; every
// entry falls out after the fixed TTL regardless of use. Safe for
// concurrent use. A nil *Cache is a valid always-miss cache.
type Cache struct {
	lru *expirable.LRU[string, *session.Record]
}

// New creates a cache holding at most size entries for at most ttl each.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &Cache{
		lru: expirable.NewLRU[string, *session.Record](size, nil, ttl),
	}
}

// Get returns a private copy of the cached record. Callers may mutate the
// returned record freely; the published snapshot is never aliased.
func (c *Cache) Get(sessionRef string) (*session.Record, bool) {
	if c == nil {
		return nil, false
	}

	rec, ok := c.lru.Get(sessionRef)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Add publishes a snapshot of the record. The cache clones on the way in,
// so later mutation by the caller is not observable through the cache.
func (c *Cache) Add(rec *session.Record) {
	if c == nil || rec == nil || rec.SessionRef == "" {
		return
	}
	c.lru.Add(rec.SessionRef, rec.Clone())
}

// Remove evicts the entry immediately. Used by logout so the local process
// sees its own revocations without waiting out the TTL.
func (c *Cache) Remove(sessionRef string) {
	if c == nil {
		return
	}
	c.lru.Remove(sessionRef)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
