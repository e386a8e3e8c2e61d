package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpires(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	m := NewMemory[int](time.Minute)
	m.now = func() time.Time { return now }

	m.Set("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryWithoutTTL(t *testing.T) {
	m := NewMemory[string](0)
	m.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	m.Set("a", "x")
	m.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestMemoryInvalidateAndPurge(t *testing.T) {
	m := NewMemory[int](time.Hour)
	m.Set("a", 1)
	m.Set("b", 2)

	m.Invalidate("a")
	_, ok := m.Get("a")
	assert.False(t, ok)
	_, ok = m.Get("b")
	assert.True(t, ok)

	m.Purge()
	assert.Equal(t, 0, m.Len())
}

func TestKey(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	a := Key([]string{"v2", "v1"}, day, "last7", "false")
	b := Key([]string{"v1", "v2"}, day, "last7", "false")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	assert.NotEqual(t, a, Key([]string{"v1", "v2"}, day.AddDate(0, 0, 1), "last7", "false"))
	assert.NotEqual(t, a, Key([]string{"v1", "v2"}, day, "last7", "true"))
	assert.NotEqual(t, Key([]string{"ab"}, day, "c"), Key([]string{"a"}, day, "bc"))
}

var _ Cache[int] = (*Memory[int])(nil)
