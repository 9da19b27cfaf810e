package cache

import (
	"sync/atomic"

	"github.com/opencontainers/go-digest"
)

// entry is one cached response body. lastAccess is stored as an
// atomic.Int64 rather than a plain field: lookups refresh it while only
// holding the store's read lock (see cache.go), so concurrent refreshes
// must themselves be race-free even though the surrounding map lookup
// is not exclusive. This is the "atomic monotonic field" approach the
// design favors over refreshing under an upgraded write lock.
type entry struct {
	key        string
	body       []byte
	size       int
	lastAccess atomic.Int64
	digest     digest.Digest
}

func newEntry(key string, body []byte, tick int64) *entry {
	e := &entry{
		key:    key,
		body:   body,
		size:   len(body),
		digest: digest.FromBytes(body),
	}
	e.lastAccess.Store(tick)
	return e
}
