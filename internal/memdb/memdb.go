package memdb

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
)

// DefaultCacheSize is the recency cache capacity used when New is given a
// non-positive capacity.
const DefaultCacheSize = 50

// ErrNilRecord is returned by [Store.Put] when handed a nil record.
var ErrNilRecord = errors.New("memdb: nil record")

// Record is implemented by values stored in a [Store].
type Record[T any] interface {
	// Clone returns a deep enough copy that mutating it does not affect
	// the original.
	Clone() T
	// Key returns the unique, immutable primary identifier.
	Key() string
	// SortKey returns the composite key used for ordered traversal. It
	// does not need to be unique across records.
	SortKey() string
}

// sortEntry is one sort-index slot. Entries order by (sortKey, id), so
// records sharing a sort key keep distinct slots and sort deterministically.
type sortEntry struct {
	sortKey string
	id      string
}

func (e sortEntry) less(o sortEntry) bool {
	if e.sortKey != o.sortKey {
		return e.sortKey < o.sortKey
	}
	return e.id < o.id
}

// Store keeps records reachable by primary id, by sort key, and through a
// bounded recency cache. Safe for concurrent use by multiple goroutines.
type Store[T Record[T]] struct {
	mu    sync.RWMutex
	byID  map[string]T
	byKey []sortEntry // ascending (sortKey, id)
	cache *Cache[string, T]
}

// New creates an empty store whose recency cache holds at most capacity
// records. A non-positive capacity selects [DefaultCacheSize].
func New[T Record[T]](capacity int) *Store[T] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Store[T]{
		byID:  make(map[string]T),
		cache: NewCache[string, T](capacity, nil),
	}
}

// Put inserts rec, or replaces the record previously stored under the same
// id. Replacing removes the old sort-index entry (the sort key may have
// changed) and invalidates the cached copy; the cache repopulates on the
// next Get.
func (s *Store[T]) Put(rec T) error {
	var zero T
	if any(rec) == any(zero) {
		return ErrNilRecord
	}
	id := rec.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byID[id]; ok {
		s.removeSortEntry(sortEntry{sortKey: prev.SortKey(), id: id})
		s.cache.Remove(id)
	}
	stored := rec.Clone()
	s.byID[id] = stored
	s.insertSortEntry(sortEntry{sortKey: stored.SortKey(), id: id})
	return nil
}

// Get returns the record stored under id. The cache is consulted first; a
// hit promotes the record to most-recently-used, a miss on a present id
// caches it, evicting the least-recently-used record if at capacity. An
// empty id reports not found.
func (s *Store[T]) Get(id string) (T, bool) {
	var zero T
	if id == "" {
		return zero, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		return v.Clone(), true
	}
	v, ok := s.byID[id]
	if !ok {
		return zero, false
	}
	s.cache.Add(id, v)
	return v.Clone(), true
}

// Delete removes id from every structure, reporting whether a record was
// present. Deleting an absent or empty id is a no-op.
func (s *Store[T]) Delete(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	s.removeSortEntry(sortEntry{sortKey: rec.SortKey(), id: id})
	s.cache.Remove(id)
	return true
}

// Exists reports whether id is stored. It does not touch the cache.
func (s *Store[T]) Exists(id string) bool {
	if id == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// All returns an iterator over clones of all records, in no particular
// order. Iteration does not touch the cache or the sort index.
func (s *Store[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, rec := range s.byID {
			if !yield(rec.Clone()) {
				return
			}
		}
	}
}

// AllSorted returns an iterator over clones of all records in ascending
// sort-key order, ties broken by id.
func (s *Store[T]) AllSorted() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, e := range s.byKey {
			if !yield(s.byID[e.id].Clone()) {
				return
			}
		}
	}
}

// Range returns an iterator over clones of the records whose sort key falls
// between start and end, both inclusive, in ascending order. The upper bound
// also admits any key that merely extends end, so Range("Doe", "Doe")
// matches "Doe, Jane" and "Doe, John". Inverted bounds yield nothing.
func (s *Store[T]) Range(start, end string) iter.Seq[T] {
	return func(yield func(T) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		lo := sort.Search(len(s.byKey), func(i int) bool {
			return s.byKey[i].sortKey >= start
		})
		// Keys extending end sort contiguously right after it, so the
		// predicate stays monotonic.
		hi := sort.Search(len(s.byKey), func(i int) bool {
			k := s.byKey[i].sortKey
			return k > end && !strings.HasPrefix(k, end)
		})
		for i := lo; i < hi; i++ {
			if !yield(s.byID[s.byKey[i].id].Clone()) {
				return
			}
		}
	}
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Clear empties the primary index, the sort index, and the cache.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.byID)
	s.byKey = s.byKey[:0]
	s.cache.Clear()
}

// Cached reports whether id is resident in the recency cache, without
// affecting recency order. Diagnostic only.
func (s *Store[T]) Cached(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Contains(id)
}

// CacheStats reports cache occupancy as "entries/capacity". Diagnostic only.
func (s *Store[T]) CacheStats() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("%d/%d", s.cache.Len(), s.cache.Cap())
}

// insertSortEntry places e at its sorted position. Called with the write
// lock held.
func (s *Store[T]) insertSortEntry(e sortEntry) {
	i := sort.Search(len(s.byKey), func(i int) bool {
		return !s.byKey[i].less(e)
	})
	s.byKey = append(s.byKey, sortEntry{})
	copy(s.byKey[i+1:], s.byKey[i:])
	s.byKey[i] = e
}

// removeSortEntry drops e if present. Called with the write lock held.
func (s *Store[T]) removeSortEntry(e sortEntry) {
	i := sort.Search(len(s.byKey), func(i int) bool {
		return !s.byKey[i].less(e)
	})
	if i < len(s.byKey) && s.byKey[i] == e {
		s.byKey = append(s.byKey[:i], s.byKey[i+1:]...)
	}
}
