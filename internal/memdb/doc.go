// Package memdb provides a generic, concurrent-safe, in-memory record store
// with three coordinated access paths.
//
// # Overview
//
// The package centers around [Store], a generic container that keeps every
// record reachable three ways at once: a primary map for O(1) lookup by id,
// a sorted index for ordered traversal and O(log n + k) range scans by a
// secondary key, and a bounded recency cache ([Cache]) for hot lookups. All
// three structures are updated under one lock per logical operation, so no
// reader ever observes them disagreeing about a record's presence.
//
// # Ownership
//
// The store is the sole owner of the records it holds: records are cloned on
// the way in and on the way out, so callers can never mutate stored state
// through a retained pointer.
//
// # Cache Semantics
//
// The cache is purely an access-path optimization: a [Store.Get] returns the
// same record whether it hits or misses, and the only observable difference
// is which record gets evicted next. Writes to an existing id invalidate the
// cached copy rather than refresh it; the cache repopulates lazily on the
// next read.
package memdb
