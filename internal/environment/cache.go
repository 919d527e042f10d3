package environment

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// #region ttl

// DefaultTTLs are the per-category validity windows.
var DefaultTTLs = map[Category]time.Duration{
	CategoryWeather:      30 * time.Minute,
	CategoryCultural:     24 * time.Hour,
	CategoryEconomic:     time.Hour,
	CategoryGeopolitical: 6 * time.Hour,
}

// DefaultMaxEntries bounds the in-memory store.
const DefaultMaxEntries = 4096

// #endregion ttl

// #region entry

// CacheKey scopes an entry by category and a location key or country code.
type CacheKey struct {
	Category Category
	Key      string
}

// Entry is one cached fetch result.
type Entry struct {
	Data      any
	FetchedAt time.Time
	Category  Category
}

// CacheStore abstracts the shared category cache so it can be swapped for a
// distributed implementation. Set is last-write-wins.
type CacheStore interface {
	Get(key CacheKey) (Entry, bool)
	Set(key CacheKey, entry Entry)
	IsExpired(entry Entry, now time.Time) bool
}

// #endregion entry

// #region memory-store

// MemoryStore is a process-local CacheStore bounded by an LRU policy.
// Stale entries are not swept; they age out through IsExpired and eviction.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttls  map[Category]time.Duration
}

// NewMemoryStore creates a store holding at most maxEntries entries.
// maxEntries <= 0 selects DefaultMaxEntries; nil ttls selects DefaultTTLs.
func NewMemoryStore(maxEntries int, ttls map[Category]time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttls == nil {
		ttls = DefaultTTLs
	}
	return &MemoryStore{cache: lru.New(maxEntries), ttls: ttls}
}

// Get returns the entry for key, if any, regardless of age.
func (m *MemoryStore) Get(key CacheKey) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.cache.Get(key)
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

// Set stores entry under key, replacing any previous entry.
func (m *MemoryStore) Set(key CacheKey, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(key, entry)
}

// IsExpired reports whether entry is outside its category TTL at now.
// Unknown categories are always expired.
func (m *MemoryStore) IsExpired(entry Entry, now time.Time) bool {
	ttl, ok := m.ttls[entry.Category]
	if !ok {
		return true
	}
	return now.Sub(entry.FetchedAt) >= ttl
}

// Len returns the number of entries held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Len()
}

// #endregion memory-store
