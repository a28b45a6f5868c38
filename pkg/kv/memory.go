package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. It backs tests and single-node dev runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key == "" {
		return false, ErrEmptyKey
	}
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dest)
}

func (m *MemoryStore) Set(ctx context.Context, key string, value any) error {
	return m.Apply(ctx, Put(key, value))
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	return m.Apply(ctx, Delete(key))
}

func (m *MemoryStore) Apply(ctx context.Context, ops ...Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sets, dels, err := encodeOps(ops)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range dels {
		delete(m.data, key)
	}
	for key, raw := range sets {
		m.data[key] = raw
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
