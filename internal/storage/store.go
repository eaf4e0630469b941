// Package storage persists the diary as compressed values under string keys,
// the way a browser would use local storage.
package storage

import (
	"context"
	"sort"
	"sync"
)

// Keys under which the diary collections are stored.
const (
	KeyMealLogs     = "foodDiaryMealLogs"
	KeyFavStores    = "foodDiaryFavStores"
	KeyPopularItems = "foodDiaryPopularItems"
)

// KV is a string key/value store.
type KV interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore is a map-backed KV. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys lists every stored key in ascending order.
func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements KV.
func (m *MemoryStore) Close() error { return nil }
