package kv

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps values in process. Listeners are notified synchronously
// after each write.
type MemoryStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	listeners *Listeners
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:      make(map[string][]byte),
		listeners: NewListeners(),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = bytes.Clone(value)
	m.mu.Unlock()

	m.listeners.Notify(key)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.listeners.Notify(key)
	}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	m.mu.Lock()
	next, err := fn(bytes.Clone(m.data[key]))
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.data[key] = next
	m.mu.Unlock()

	m.listeners.Notify(key)
	return nil
}

func (m *MemoryStore) Subscribe(_ context.Context, l Listener, keys ...string) (func(), error) {
	return m.listeners.Add(l, keys...), nil
}

func (m *MemoryStore) Close() error { return nil }
