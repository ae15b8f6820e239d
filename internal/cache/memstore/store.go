// Package memstore is a bounded in-process TTL store with insertion-order
// FIFO eviction.
package memstore

import (
	"sync"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100
)

type entry struct {
	val        []byte
	insertedAt time.Time
}

// Store holds up to max entries. Expiry is checked lazily on Get; there is
// no background sweep. When full, Set evicts the oldest-inserted key.
// Eviction is strictly by insertion order, not access recency: reads and
// overwrites do not promote an entry.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]entry
	order   []string // insertion order, oldest first
	now     func() time.Time
}

type Option func(*Store)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(ttl time.Duration, maxEntries int, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]entry, maxEntries),
		now:     time.Now,
	}
	for _, f := range opts {
		f(s)
	}
	return s
}

func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.insertedAt) > s.ttl {
		s.remove(key)
		return nil, false
	}
	return e.val, true
}

// Set inserts or replaces an entry. Replacing an existing key refreshes its
// timestamp but keeps its FIFO slot, so a rewritten entry still evicts on
// the original insertion schedule relative to its peers.
func (s *Store) Set(key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.entries[key] = entry{val: val, insertedAt: s.now()}
		return
	}
	if len(s.entries) >= s.max {
		s.remove(s.order[0])
	}
	s.entries[key] = entry{val: val, insertedAt: s.now()}
	s.order = append(s.order, key)
}

func (s *Store) Delete(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.remove(k)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry, s.max)
	s.order = s.order[:0]
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// remove expects s.mu held.
func (s *Store) remove(key string) {
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
