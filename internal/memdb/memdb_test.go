package memdb

import (
	"fmt"
	"slices"
	"strconv"
	"testing"
)

// person is a simple record type for testing.
type person struct {
	ID    string
	First string
	Last  string
	Phone string
}

func (p *person) Clone() *person {
	c := *p
	return &c
}

func (p *person) Key() string {
	return p.ID
}

func (p *person) SortKey() string {
	return p.Last + ", " + p.First
}

func newPerson(id, first, last string) *person {
	return &person{ID: id, First: first, Last: last, Phone: "5550000000"}
}

func sortKeys[T Record[T]](s *Store[T]) []string {
	var keys []string
	for rec := range s.AllSorted() {
		keys = append(keys, rec.SortKey())
	}
	return keys
}

func TestStorePutAndGet(t *testing.T) {
	s := New[*person](0)
	p := newPerson("1", "Jane", "Doe")
	if err := s.Put(p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := s.Get("1")
	if !ok {
		t.Fatal("Get(1) not found")
	}
	if *got != *p {
		t.Errorf("Get(1) = %+v, want %+v", got, p)
	}
	// Cached and uncached reads must be identical.
	again, ok := s.Get("1")
	if !ok || *again != *p {
		t.Errorf("cached Get(1) = %+v, %v; want %+v, true", again, ok, p)
	}
}

func TestStorePutNil(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(nil); err != ErrNilRecord {
		t.Fatalf("Put(nil) = %v, want ErrNilRecord", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStorePutClonesInput(t *testing.T) {
	s := New[*person](0)
	p := newPerson("1", "Jane", "Doe")
	if err := s.Put(p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	p.First = "mutated"
	got, _ := s.Get("1")
	if got.First != "Jane" {
		t.Errorf("stored record mutated through caller pointer: %q", got.First)
	}
	// The returned clone must be independent too.
	got.First = "mutated again"
	fresh, _ := s.Get("1")
	if fresh.First != "Jane" {
		t.Errorf("stored record mutated through returned pointer: %q", fresh.First)
	}
}

func TestStoreGetAbsent(t *testing.T) {
	s := New[*person](0)
	if _, ok := s.Get("nope"); ok {
		t.Error("Get on absent id should report false")
	}
	if _, ok := s.Get(""); ok {
		t.Error("Get on empty id should report false")
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(newPerson("1", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if s.Delete("absent") {
		t.Error("Delete(absent) should report false")
	}
	if s.Delete("") {
		t.Error("Delete(\"\") should report false")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 after no-op deletes", s.Len())
	}
	if got := sortKeys(s); len(got) != 1 {
		t.Errorf("sort index has %d entries, want 1", len(got))
	}
}

func TestStoreDeleteRemovesEverywhere(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(newPerson("1", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := s.Get("1"); !ok {
		t.Fatal("Get(1) not found")
	}
	if !s.Cached("1") {
		t.Fatal("1 should be cached after Get")
	}
	if !s.Delete("1") {
		t.Fatal("Delete(1) should report true")
	}
	if s.Exists("1") {
		t.Error("1 still in primary index")
	}
	if s.Cached("1") {
		t.Error("1 still in cache")
	}
	if got := sortKeys(s); len(got) != 0 {
		t.Errorf("sort index not empty: %v", got)
	}
}

func TestStoreSortedOrder(t *testing.T) {
	s := New[*person](0)
	people := []*person{
		newPerson("1", "Zoe", "Young"),
		newPerson("2", "Adam", "Young"),
		newPerson("3", "Jane", "Doe"),
		newPerson("4", "Bob", "Miller"),
		newPerson("5", "Ann", "Adams"),
	}
	for _, p := range people {
		if err := s.Put(p); err != nil {
			t.Fatalf("Put %s failed: %v", p.ID, err)
		}
	}
	keys := sortKeys(s)
	if len(keys) != len(people) {
		t.Fatalf("AllSorted returned %d records, want %d", len(keys), len(people))
	}
	if !slices.IsSorted(keys) {
		t.Errorf("AllSorted out of order: %v", keys)
	}
}

func TestStoreSortKeyChangeOnUpdate(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(newPerson("1", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	// Remarriage: the sort key changes, the old index entry must go away.
	if err := s.Put(newPerson("1", "Jane", "Smith")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	keys := sortKeys(s)
	want := []string{"Smith, Jane"}
	if !slices.Equal(keys, want) {
		t.Errorf("sort index = %v, want %v", keys, want)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStoreSortKeyCollision(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(newPerson("b", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(newPerson("a", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	var ids []string
	for rec := range s.AllSorted() {
		ids = append(ids, rec.ID)
	}
	// Both records survive; ties order by id.
	want := []string{"a", "b"}
	if !slices.Equal(ids, want) {
		t.Errorf("AllSorted ids = %v, want %v", ids, want)
	}
}

func TestStoreRange(t *testing.T) {
	s := New[*person](0)
	people := []*person{
		newPerson("1", "Jane", "Doe"),
		newPerson("2", "John", "Doe"),
		newPerson("3", "Ann", "Adams"),
		newPerson("4", "Bob", "Miller"),
	}
	for _, p := range people {
		if err := s.Put(p); err != nil {
			t.Fatalf("Put %s failed: %v", p.ID, err)
		}
	}

	collect := func(start, end string) []string {
		var ids []string
		for rec := range s.Range(start, end) {
			ids = append(ids, rec.ID)
		}
		return ids
	}

	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"PrefixUpperBound", "Doe", "Doe", []string{"1", "2"}},
		{"ExactBounds", "Adams, Ann", "Doe, Jane", []string{"3", "1"}},
		{"FullSpan", "A", "Z", []string{"3", "1", "2", "4"}},
		{"EmptyInterval", "E", "F", nil},
		{"InvertedBounds", "Miller", "Doe", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collect(tt.start, tt.end); !slices.Equal(got, tt.want) {
				t.Errorf("Range(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestStoreCacheBound(t *testing.T) {
	s := New[*person](3)
	for i := range 4 {
		id := strconv.Itoa(i)
		if err := s.Put(newPerson(id, "First", "Last"+id)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	for i := range 4 {
		if _, ok := s.Get(strconv.Itoa(i)); !ok {
			t.Fatalf("Get(%d) not found", i)
		}
	}
	if got := s.CacheStats(); got != "3/3" {
		t.Errorf("CacheStats = %q, want 3/3", got)
	}
	if s.Cached("0") {
		t.Error("0 should have been evicted as least-recently-used")
	}
	for i := 1; i < 4; i++ {
		if !s.Cached(strconv.Itoa(i)) {
			t.Errorf("%d should be resident", i)
		}
	}
}

func TestStoreUpdateInvalidatesCache(t *testing.T) {
	s := New[*person](0)
	if err := s.Put(newPerson("1", "Jane", "Doe")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := s.Get("1"); !ok {
		t.Fatal("Get(1) not found")
	}
	if !s.Cached("1") {
		t.Fatal("1 should be cached")
	}
	updated := newPerson("1", "Jane", "Doe")
	updated.Phone = "5559999999"
	if err := s.Put(updated); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if s.Cached("1") {
		t.Error("stale cache entry survived the update")
	}
	got, ok := s.Get("1")
	if !ok {
		t.Fatal("Get(1) not found after update")
	}
	if got.Phone != "5559999999" {
		t.Errorf("Get(1).Phone = %q, want the updated value", got.Phone)
	}
}

func TestStoreClear(t *testing.T) {
	s := New[*person](0)
	for i := range 5 {
		id := strconv.Itoa(i)
		if err := s.Put(newPerson(id, "First", "Last"+id)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if _, ok := s.Get(id); !ok {
			t.Fatalf("Get(%s) not found", id)
		}
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if got := s.CacheStats(); got != "0/50" {
		t.Errorf("CacheStats = %q, want 0/50", got)
	}
	if keys := sortKeys(s); len(keys) != 0 {
		t.Errorf("sort index not empty: %v", keys)
	}
}

func TestStoreIterationStopsEarly(t *testing.T) {
	s := New[*person](0)
	for i := range 10 {
		id := strconv.Itoa(i)
		if err := s.Put(newPerson(id, "First", "Last"+id)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	n := 0
	for range s.AllSorted() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d records, want 3", n)
	}
}

// TestStoreConsistency drives a mixed workload and checks that the three
// structures never disagree about a record's presence.
func TestStoreConsistency(t *testing.T) {
	s := New[*person](4)
	live := map[string]bool{}
	for i := range 40 {
		id := strconv.Itoa(i % 12)
		switch i % 5 {
		case 0, 1, 2:
			if err := s.Put(newPerson(id, "F"+id, "L"+strconv.Itoa(i%7))); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			live[id] = true
		case 3:
			s.Get(id)
		case 4:
			s.Delete(id)
			delete(live, id)
		}
	}

	if s.Len() != len(live) {
		t.Fatalf("Len = %d, want %d", s.Len(), len(live))
	}
	seen := map[string]int{}
	for rec := range s.AllSorted() {
		seen[rec.ID]++
	}
	for id := range live {
		if seen[id] != 1 {
			t.Errorf("id %s has %d sort-index entries, want 1", id, seen[id])
		}
	}
	if len(seen) != len(live) {
		t.Errorf("sort index holds %d ids, want %d", len(seen), len(live))
	}
	for i := range 12 {
		id := strconv.Itoa(i)
		if s.Cached(id) && !live[id] {
			t.Errorf("cache holds %s which is not in the primary index", id)
		}
	}
}

// TestStoreRecencyScenario is the end-to-end walk from the store's sizing:
// 60 records, the default 50-entry cache, reads in insertion order.
func TestStoreRecencyScenario(t *testing.T) {
	s := New[*person](0)
	for i := 1; i <= 60; i++ {
		// Zero-padded last names keep insertion and sort order aligned.
		p := newPerson(strconv.Itoa(i), "First", fmt.Sprintf("Last%03d", i))
		if err := s.Put(p); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	for i := 1; i <= 60; i++ {
		if _, ok := s.Get(strconv.Itoa(i)); !ok {
			t.Fatalf("Get(%d) not found", i)
		}
	}
	if got := s.CacheStats(); got != "50/50" {
		t.Fatalf("CacheStats = %q, want 50/50", got)
	}
	for i := 1; i <= 10; i++ {
		if s.Cached(strconv.Itoa(i)) {
			t.Errorf("id %d should have been evicted", i)
		}
	}
	for i := 11; i <= 60; i++ {
		if !s.Cached(strconv.Itoa(i)) {
			t.Errorf("id %d should be resident", i)
		}
	}
}
