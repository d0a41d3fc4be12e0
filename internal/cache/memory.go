package cache

import (
	"context"
	"sync"
	"time"
)

// entry is one cached value with its expiry deadline.
type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process TTL cache with lazy expiry: entries are dropped
// when a read finds them stale, there is no background sweep. The clock is
// injected so tests can control expiry deterministically.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates a memory cache using the given clock.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value for key, dropping it when expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the entry.
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true
}

// Put stores value under key for ttl.
func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry{value: stored, expiresAt: expiresAt}
	m.mu.Unlock()

	return nil
}

// Len returns the number of stored entries, including stale ones not yet
// dropped by a read.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for the memory backend.
func (*Memory) Close() error {
	return nil
}
