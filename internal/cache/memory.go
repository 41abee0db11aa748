package cache

import (
	"sync"
	"time"
)

// Memory is the process-local fallback tier: a short-TTL map consulted only
// after the remote store reports unavailable or misses, and only for
// high-fanout endpoints where a full recompute is expensive. Not shared
// across instances; damage control, not correctness.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time // injectable clock for testing
}

type memoryItem struct {
	value    []byte
	storedAt time.Time
}

// NewMemory creates an empty fallback cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the value and its age if present and unexpired.
func (m *Memory) Get(key string) ([]byte, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, 0, false
	}
	age := m.now().Sub(item.storedAt)
	if age >= m.ttl {
		delete(m.items, key)
		return nil, 0, false
	}
	return item.value, age, true
}

// Set stores value under key, replacing any previous entry.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: value, storedAt: m.now()}
}
