package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultMaxItems is the capacity bound applied when none is configured.
const DefaultMaxItems = 1000

// DefaultRetention is the fixed retention window after which an entry
// is considered expired.
const DefaultRetention = 24 * time.Hour

// MemoryStore is the authoritative in-memory view of resident entries,
// bounded by a maximum item count.
//
// Get does not filter expired entries: callers distinguish "miss" from
// "stale hit" for refresh decisions. Eviction removes expired entries
// before valid-but-old ones, so freshness wins over pure recency.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]Entry
	maxItems  int
	retention time.Duration
}

// NewMemoryStore creates a MemoryStore with the given capacity bound.
// Non-positive arguments fall back to the defaults.
func NewMemoryStore(maxItems int, retention time.Duration) *MemoryStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{
		entries:   make(map[string]Entry),
		maxItems:  maxItems,
		retention: retention,
	}
}

// Configure updates the capacity bound and evicts if now over capacity.
func (s *MemoryStore) Configure(maxItems int) {
	if maxItems <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxItems = maxItems
	s.evictLocked()
}

// Put inserts or replaces an entry by key, then enforces the capacity
// bound.
func (s *MemoryStore) Put(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	if len(s.entries) > s.maxItems {
		s.evictLocked()
	}
}

// Get returns the entry for key, expired or not. The second return is
// false only when the key is absent.
func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// RemoveAll drops every entry.
func (s *MemoryStore) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
}

// RemoveWherePrefix drops entries whose key starts with prefix. Used
// for language-scoped clears, where the key's language prefix scopes
// the delete.
func (s *MemoryStore) RemoveWherePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of resident entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a snapshot copy of all resident entries.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// Counts returns the number of valid and expired resident entries.
func (s *MemoryStore) Counts() (valid, expired int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Expired(s.retention) {
			expired++
		} else {
			valid++
		}
	}
	return valid, expired
}

// MemoryBytes estimates the total in-memory payload size.
func (s *MemoryStore) MemoryBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entries {
		n += e.approxBytes()
	}
	return n
}

// CleanExpired removes every expired entry and returns how many were
// dropped.
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, e := range s.entries {
		if e.Expired(s.retention) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// evictLocked enforces the capacity bound. Phase one removes expired
// entries; phase two removes the oldest remaining entries by CreatedAt
// until the store fits. Caller must hold the write lock.
func (s *MemoryStore) evictLocked() {
	if len(s.entries) <= s.maxItems {
		return
	}

	for key, e := range s.entries {
		if e.Expired(s.retention) {
			delete(s.entries, key)
		}
	}
	if len(s.entries) <= s.maxItems {
		return
	}

	remaining := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		remaining = append(remaining, e)
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].CreatedAt.Before(remaining[j].CreatedAt)
	})
	for i := 0; i < len(remaining)-s.maxItems; i++ {
		delete(s.entries, remaining[i].Key)
	}
}
