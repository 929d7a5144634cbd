package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// keyContextPrefixLen bounds how much of the context text feeds the cache
// key. Bounding trades precision for cheap, stable keys: two contexts that
// differ only beyond this prefix share a key.
const keyContextPrefixLen = 1000

// Key derives the deterministic cache key for a request. The key is a pure
// function of the semantically distinguishing inputs, so identical requests
// always map to the same entry.
func Key(contextText string, domain Domain, format, variant string) (key string) {
	prefix := contextText
	if len(prefix) > keyContextPrefixLen {
		prefix = prefix[:keyContextPrefixLen]
	}

	sum := sha256.Sum256([]byte(prefix + "\x00" + string(domain) + "\x00" + format + "\x00" + variant))
	key = hex.EncodeToString(sum[:])
	return key
}

// Cache memoizes final pipeline values by content-derived key. It is an
// unbounded memoization table for the lifetime of the process: entries are
// write-once and never evicted unless the caller clears the whole cache
// between unrelated batches of work.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     Value
	createdAt time.Time
}

// NewCache creates an empty content cache.
func NewCache() (cache *Cache) {
	cache = &Cache{
		entries: make(map[string]cacheEntry),
	}
	return cache
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) (value Value, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return value, ok
	}

	value = entry.value
	return value, ok
}

// Put stores a value under key.
func (c *Cache) Put(key string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		createdAt: time.Now(),
	}
}

// Clear drops every entry. Callers use this between unrelated applications
// to avoid unbounded growth.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() (count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count = len(c.entries)
	return count
}
