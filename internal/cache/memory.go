package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// MemoryStore is an in-process key/value store with per-entry expiry.
// Expired entries are dropped when read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	clock clockwork.Clock
}

// NewMemoryStore creates an empty store. A nil clock uses real time.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{items: make(map[string]entry), clock: clock}
}

// Get returns a copy of the stored value, or nil, nil on a miss or an expired entry.
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if !s.clock.Now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := s.items[key]; ok && !s.clock.Now().Before(cur.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, nil
	}

	v := make(json.RawMessage, len(e.value))
	copy(v, e.value)
	return v, nil
}

// Set stores a copy of value for ttl. An empty value or non-positive ttl is a no-op.
func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if len(value) == 0 || ttl <= 0 {
		return nil
	}
	v := make(json.RawMessage, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry{value: v, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

// Delete removes key if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet read.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }
