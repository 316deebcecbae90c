// Provides the bounded recency cache used by Store.

package memdb

import "container/list"

// Cache is a bounded least-recently-used cache. A Get promotes the entry to
// most-recently-used; an Add beyond capacity evicts the least-recently-used
// entry and reports it through the eviction callback.
//
// Cache performs no locking of its own: Store mutates it under the store
// lock so that cache state never disagrees with the indexes mid-operation.
type Cache[K comparable, V any] struct {
	capacity int
	onEvict  func(K, V)
	order    *list.List
	items    map[K]*list.Element
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewCache creates a cache holding at most capacity entries. onEvict, if
// non-nil, is called with each entry dropped to make room; it is not called
// for explicit Remove or Clear.
func NewCache[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		onEvict:  onEvict,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most-recently-used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is resident without touching recency order.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Add inserts or replaces the value for key as most-recently-used, evicting
// the least-recently-used entry if the cache is over capacity.
func (c *Cache[K, V]) Add(key K, value V) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry[K, V]).value = value
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove drops key from the cache, reporting whether it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

// Cap returns the cache capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Clear drops every entry without firing the eviction callback.
func (c *Cache[K, V]) Clear() {
	c.order.Init()
	clear(c.items)
}

func (c *Cache[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*cacheEntry[K, V])
	c.order.Remove(el)
	delete(c.items, entry.key)
	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value)
	}
}
