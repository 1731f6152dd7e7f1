package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached value with its capture timestamp.
type entry struct {
	value      []byte
	capturedAt time.Time
}

// Memory is an in-process TTL cache backed by a mutex-guarded map. Entries
// are valid while now - capturedAt < ttl; expired entries are treated as
// misses on read and overwritten by the next Set, never swept in the
// background. The map is unbounded — entries for keys that are never read
// again stay resident until invalidated (known limitation).
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[string]entry
}

// NewMemory creates an in-memory TTL cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// NewMemoryWithClock creates an in-memory TTL cache with an injectable clock
// for tests.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().Sub(e.capturedAt) >= m.ttl {
		recordMiss(key)
		return nil, false
	}

	recordHit(key)
	return e.value, true
}

// Set stores value under key with a fresh capture timestamp.
func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	m.entries[key] = entry{value: value, capturedAt: m.now()}
	m.mu.Unlock()
}

// Delete evicts the entry for key.
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Clear evicts all entries.
func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Len returns the number of resident entries, including expired ones.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
