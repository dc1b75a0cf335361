package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a size-bounded cache whose entries also expire after a TTL.
// Every read refreshes an entry's position but not its deadline; Touch
// extends the deadline explicitly.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	onEvict func(key string, value T)
	now     func() time.Time
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

type evicted[T any] struct {
	key  string
	data T
}

// Option configures an LRUCache.
type Option[T any] func(*LRUCache[T])

// WithEvictHook registers fn to run, outside the cache lock, whenever an
// entry leaves the cache for any reason other than Set replacing it.
func WithEvictHook[T any](fn func(key string, value T)) Option[T] {
	return func(c *LRUCache[T]) { c.onEvict = fn }
}

// WithClock overrides time.Now; tests use it to expire entries.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *LRUCache[T]) { c.now = now }
}

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T any](maxSize int, ttl time.Duration, opts ...Option[T]) *LRUCache[T] {
	c := &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache
func (c *LRUCache[T]) Get(key string) (T, bool) {
	var (
		zero T
		gone []evicted[T]
	)
	defer func() { c.notify(gone) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		gone = append(gone, c.removeElement(elem))
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

// Touch extends the deadline of key by the TTL. It reports whether the key was live.
func (c *LRUCache[T]) Touch(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return false
	}
	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		return false
	}
	item.expiresAt = c.now().Add(c.ttl)
	c.lru.MoveToFront(elem)
	return true
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	var gone []evicted[T]
	defer func() { c.notify(gone) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	for c.maxSize > 0 && c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		gone = append(gone, c.removeElement(oldest))
	}
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	var gone []evicted[T]
	defer func() { c.notify(gone) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		gone = append(gone, c.removeElement(elem))
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) evicted[T] {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
	return evicted[T]{key: item.key, data: item.data}
}

func (c *LRUCache[T]) notify(gone []evicted[T]) {
	if c.onEvict == nil {
		return
	}
	for _, g := range gone {
		c.onEvict(g.key, g.data)
	}
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	var gone []evicted[T]
	defer func() { c.notify(gone) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		gone = append(gone, c.removeElement(elem))
	}

	return len(toRemove)
}

// Purge removes every entry, running the evict hook for each.
func (c *LRUCache[T]) Purge() int {
	var gone []evicted[T]
	defer func() { c.notify(gone) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		gone = append(gone, c.removeElement(elem))
		elem = next
	}
	return len(gone)
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
