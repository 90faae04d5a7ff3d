package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore keeps entries in a process-local map. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, false
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)
	e := memoryEntry{value: stored}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict()
	s.entries[key] = e
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, k := range keys {
		if e, ok := s.entries[k]; ok {
			if !s.expired(e) {
				removed++
			}
			delete(s.entries, k)
		}
	}
	return removed
}

func (s *MemoryStore) KeysMatching(_ context.Context, prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k, e := range s.entries {
		if strings.HasPrefix(k, prefix) && !s.expired(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// evict drops expired entries; callers hold the write lock.
func (s *MemoryStore) evict() {
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
		}
	}
}
