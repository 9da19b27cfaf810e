package cache

import "strings"

// store is the unsynchronized fingerprint→object mapping and its
// capacity bookkeeping. Every method assumes the caller already holds
// whatever lock cache.Cache requires for the operation (see cache.go);
// store itself performs no locking, mirroring the separation the spec
// draws between the Cache Store (§4.3) and the Cache Concurrency Gate
// (§4.4).
type store struct {
	entries     map[string]*entry
	currentSize int64
}

func newStore() *store {
	return &store{entries: make(map[string]*entry)}
}

// find implements the matching rule from §4.3: an exact key match, or
// (when key ends in '/') a match against the key with its trailing
// slash stripped.
func (s *store) find(key string) *entry {
	if e, ok := s.entries[key]; ok {
		return e
	}
	if strings.HasSuffix(key, "/") {
		if e, ok := s.entries[strings.TrimSuffix(key, "/")]; ok {
			return e
		}
	}
	return nil
}

// evictOne removes the entry with the smallest lastAccess and reports
// whether one was removed. Mirrors the linear scan-for-minimum the
// teacher's loader.evict performs over its runner slots.
func (s *store) evictOne() (removedKey string, removedSize int, ok bool) {
	var victim *entry
	for _, e := range s.entries {
		if victim == nil || e.lastAccess.Load() < victim.lastAccess.Load() {
			victim = e
		}
	}
	if victim == nil {
		return "", 0, false
	}
	delete(s.entries, victim.key)
	s.currentSize -= int64(victim.size)
	return victim.key, victim.size, true
}

// put inserts e, replacing any existing entry under the same key in
// place (preserving I4: no two entries may share a key) and adjusting
// currentSize accordingly.
func (s *store) put(e *entry) {
	if old, ok := s.entries[e.key]; ok {
		s.currentSize -= int64(old.size)
	}
	s.entries[e.key] = e
	s.currentSize += int64(e.size)
}
