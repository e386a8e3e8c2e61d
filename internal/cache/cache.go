package cache

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache stores computed values by key.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Invalidate(key string)
	Purge()
}

type entry[V any] struct {
	value V
	exp   time.Time
}

// Memory is an in-process Cache whose entries expire after a fixed TTL.
// A non-positive TTL keeps entries until they are invalidated.
type Memory[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

func NewMemory[V any](ttl time.Duration) *Memory[V] {
	return &Memory[V]{
		items: map[string]entry[V]{},
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[key]; ok {
		if m.ttl <= 0 || m.now().Before(e.exp) {
			return e.value, true
		}
		delete(m.items, key)
	}
	var zero V
	return zero, false
}

func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry[V]{
		value: value,
		exp:   m.now().Add(m.ttl),
	}
}

func (m *Memory[V]) Invalidate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *Memory[V]) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = map[string]entry[V]{}
}

// Len counts stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Key hashes the parts of a request into a stable key. Venue ids are
// order-insensitive; day pins the key to a calendar date so that
// day-relative ranges roll over at midnight.
func Key(venueIDs []string, day time.Time, parts ...string) string {
	ids := append([]string(nil), venueIDs...)
	sort.Strings(ids)

	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(ids, ",")))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
