package pending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/tally/internal/action"
)

// MemoryStore keeps staged actions in a process-local map.
//
// Thread-safety: every method takes the same mutex, so Take's
// check-owner-then-delete cannot interleave with another Take.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]action.Staged
	ttl     time.Duration
	clock   action.Clock
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the wall clock (tests).
func WithClock(c action.Clock) MemoryOption {
	return func(s *MemoryStore) {
		s.clock = c
	}
}

// NewMemoryStore creates an empty store. A non-positive ttl selects DefaultTTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		entries: make(map[string]action.Staged),
		ttl:     ttl,
		clock:   action.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL implements Store.
func (s *MemoryStore) TTL() time.Duration {
	return s.ttl
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, st action.Staged) error {
	if st.ID == "" {
		return fmt.Errorf("put pending action: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[st.ID]; ok && !existing.Expired(s.clock.Now(), s.ttl) {
		return fmt.Errorf("put pending action %s: %w", st.ID, ErrDuplicateID)
	}
	s.entries[st.ID] = st
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (action.Staged, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[id]
	if !ok || st.Expired(s.clock.Now(), s.ttl) {
		return action.Staged{}, false, nil
	}
	return st, true, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, id, owner string) (action.Staged, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[id]
	if !ok {
		return action.Staged{}, ErrNotFound
	}
	if st.Expired(s.clock.Now(), s.ttl) {
		// Expiry wins over the owner check; the entry is gone either way.
		delete(s.entries, id)
		return action.Staged{}, ErrNotFound
	}
	if st.Owner != owner {
		return action.Staged{}, ErrForbidden
	}
	delete(s.entries, id)
	return st, nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, st := range s.entries {
		if st.Expired(now, maxAge) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len implements Store. Expired entries not yet swept are not counted.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	n := 0
	for _, st := range s.entries {
		if !st.Expired(now, s.ttl) {
			n++
		}
	}
	return n, nil
}
