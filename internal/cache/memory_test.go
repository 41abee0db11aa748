package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	m := NewMemory(5 * time.Minute)

	_, _, ok := m.Get("k")
	assert.False(t, ok, "empty cache misses")

	m.Set("k", []byte("v"))
	v, age, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.Less(t, age, time.Second)
}

func TestMemory_ExpiryWithSimulatedClock(t *testing.T) {
	m := NewMemory(5 * time.Minute)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Set("k", []byte("v"))

	clock = clock.Add(4 * time.Minute)
	_, age, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, 4*time.Minute, age)

	clock = clock.Add(2 * time.Minute)
	_, _, ok = m.Get("k")
	assert.False(t, ok, "entry past TTL is evicted")
}

func TestMemory_LastWriteWins(t *testing.T) {
	m := NewMemory(time.Minute)
	m.Set("k", []byte("a"))
	m.Set("k", []byte("b"))
	v, _, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("b"), v)
}
