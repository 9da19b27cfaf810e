// Package cache implements the shared, concurrency-safe response cache
// and the lock discipline that coordinates access to it. A single Cache
// is created by the dispatcher and shared, read-mostly, across every
// connection's pipeline.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
)

// Default capacity limits, normative per §6.
const (
	MaxObjectSize = 102400
	MaxCacheSize  = 1049000
)

// Cache guards a store behind a sync.RWMutex: lookups take the read
// side and may run concurrently with each other; admissions take the
// write side and are mutually exclusive with any lookup. A waiting
// admission blocks new lookups from taking the read side, so sustained
// lookups cannot starve admissions (the fair gate §4.4 permits). It is
// grounded on the
// `lock sync.RWMutex` field the teacher's Scheduler uses to guard its
// own shared routing state.
type Cache struct {
	mu            sync.RWMutex
	store         *store
	tick          atomic.Int64
	maxObjectSize int
	maxCacheSize  int64
	log           logrus.FieldLogger

	hits      atomic.Int64
	misses    atomic.Int64
	admits    atomic.Int64
	evictions atomic.Int64
}

// New creates an empty Cache with the given capacity limits. A nil
// logger falls back to a fresh logrus logger with default settings.
func New(maxObjectSize int, maxCacheSize int64, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = logrus.New().WithField("component", "cache")
	}
	return &Cache{
		store:         newStore(),
		maxObjectSize: maxObjectSize,
		maxCacheSize:  maxCacheSize,
		log:           log,
	}
}

// Lookup returns a copy of the cached body for key, if one matches
// under the §4.3 matching rule. On a hit it refreshes the entry's
// lastAccess to a freshly allocated tick before returning, per §4.4's
// "refresh on every hit" resolution — strictly increasing lastAccess
// relative to any prior value (P4), even though the refresh happens
// while only the read lock is held.
func (c *Cache) Lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	e := c.store.find(key)
	if e == nil {
		c.mu.RUnlock()
		c.misses.Add(1)
		return nil, false
	}
	e.lastAccess.Store(c.tick.Add(1))
	body := make([]byte, len(e.body))
	copy(body, e.body)
	c.mu.RUnlock()

	c.hits.Add(1)
	return body, true
}

// Admit inserts body under key, evicting least-recently-used entries
// until it fits. It is a silent no-op when body exceeds maxObjectSize
// (AdmissionSkipped, §7) and replaces any existing entry for key in
// place rather than duplicating it, resolving the ambiguity in §9 in
// favor of preserving I4.
func (c *Cache) Admit(key string, body []byte) {
	if len(body) > c.maxObjectSize {
		c.log.WithField("uri", key).Debug("admission skipped: object exceeds max size")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for int64(len(body))+c.store.currentSize > c.maxCacheSize {
		victimKey, victimSize, ok := c.store.evictOne()
		if !ok {
			break
		}
		c.evictions.Add(1)
		c.log.WithFields(logrus.Fields{
			"uri":  victimKey,
			"size": units.HumanSize(float64(victimSize)),
		}).Debug("evicted cache entry")
	}

	e := newEntry(key, body, c.tick.Add(1))
	c.store.put(e)
	c.admits.Add(1)
	c.log.WithFields(logrus.Fields{
		"uri":    key,
		"size":   units.HumanSize(float64(len(body))),
		"digest": e.digest,
	}).Debug("admitted cache entry")
}

// Stats is a point-in-time snapshot of cache bookkeeping, used by the
// metrics endpoint and by tests asserting P1/P2.
type Stats struct {
	Entries     int
	CurrentSize int64
	Hits        int64
	Misses      int64
	Admissions  int64
	Evictions   int64
}

// Stats returns a snapshot. It takes the read side of the gate, same as
// Lookup.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Entries:     len(c.store.entries),
		CurrentSize: c.store.currentSize,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Admissions:  c.admits.Load(),
		Evictions:   c.evictions.Load(),
	}
}
