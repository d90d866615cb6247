package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in a map. MaxValueSize, when positive, rejects
// larger values with ErrQuotaExceeded the way browser storage does.
type MemoryStore struct {
	mu           sync.RWMutex
	data         map[string][]byte
	MaxValueSize int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value at key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value at key
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if m.MaxValueSize > 0 && len(value) > m.MaxValueSize {
		return wrap("set", key, ErrQuotaExceeded)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key; absent keys are not an error
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
