package utils

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value      T
	expiration time.Time
}

// KeyedCache is a TTL cache over string keys. Entries expire individually;
// Sweep drops everything already expired.
type KeyedCache[T any] struct {
	entries map[string]cacheEntry[T]
	ttl     time.Duration
	mutex   sync.RWMutex
}

// NewKeyedCache initializes an empty cache whose entries live for ttl.
func NewKeyedCache[T any](ttl time.Duration) *KeyedCache[T] {
	return &KeyedCache[T]{
		entries: make(map[string]cacheEntry[T]),
		ttl:     ttl,
	}
}

// Set stores a value under key, replacing any previous entry.
func (c *KeyedCache[T]) Set(key string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = cacheEntry[T]{
		value:      value,
		expiration: time.Now().Add(c.ttl),
	}
}

// Get retrieves the cached value for key if it has not expired.
func (c *KeyedCache[T]) Get(key string) (T, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiration) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Sweep removes expired entries and reports how many were dropped.
func (c *KeyedCache[T]) Sweep() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	dropped := 0
	for key, entry := range c.entries {
		if now.After(entry.expiration) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Clear removes all cached values.
func (c *KeyedCache[T]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry[T])
}
