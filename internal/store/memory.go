package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory is a process-local Store backed by go-cache. Entries never expire
// on their own; age-based eviction is left to DeleteOlderThan.
type Memory[T any] struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{cache: cache.New(cache.NoExpiration, 0), now: time.Now}
}

// WithClock replaces the clock used for timestamps.
func (m *Memory[T]) WithClock(now func() time.Time) *Memory[T] {
	m.now = now
	return m
}

func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	if v, ok := m.cache.Get(id); ok {
		return v.(Entry[T]).Value, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *Memory[T]) Set(_ context.Context, id string, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e := Entry[T]{ID: id, Value: v, Created: now, Updated: now}
	if old, ok := m.cache.Get(id); ok {
		e.Created = old.(Entry[T]).Created
	}
	m.cache.Set(id, e, cache.NoExpiration)
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cache.Get(id); !ok {
		return ErrNotFound
	}
	m.cache.Delete(id)
	return nil
}

func (m *Memory[T]) List(_ context.Context) ([]Entry[T], error) {
	items := m.cache.Items()
	out := make([]Entry[T], 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(Entry[T]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

func (m *Memory[T]) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, it := range m.cache.Items() {
		if it.Object.(Entry[T]).Created.Before(cutoff) {
			m.cache.Delete(id)
			n++
		}
	}
	return n, nil
}
