// Package cache keeps recent script analysis results in memory, keyed
// by a BLAKE3 hash of the script source. ManageSieve clients tend to
// re-upload the same script on every "save" click, so even a small
// cache absorbs most repeat work.
package cache

import (
	"container/list"
	"encoding/hex"
	"sync"

	"lukechampine.com/blake3"
)

// Key identifies a script by content.
type Key string

// KeyFor hashes source into a cache key.
func KeyFor(source []byte) Key {
	sum := blake3.Sum256(source)
	return Key(hex.EncodeToString(sum[:]))
}

type entry struct {
	key   Key
	value any
}

// Cache is a fixed-capacity LRU. The zero value is unusable; use New.
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[Key]*list.Element

	hits   uint64
	misses uint64
}

// New returns a cache holding at most capacity entries. A capacity of
// zero or less yields a cache that stores nothing, which keeps callers
// free of nil checks when caching is disabled.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[Key]*list.Element),
	}
}

// Get returns the value stored under key, marking it recently used.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Put stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *Cache) Put(key Key, value any) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
