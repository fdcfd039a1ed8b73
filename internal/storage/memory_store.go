package storage

import (
	"fmt"
	"sync"
)

// MemoryStore keeps values in process memory. It enforces the same quota as the
// durable backends so degraded-mode behaviour can be exercised without disk.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	quota  int
	closed bool
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), quota: quota}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrStoreClosed
	}
	val, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if used := usageAfter(m.data, key, value); used > m.quota {
		return fmt.Errorf("%w: %d of %d bytes", ErrStorageFull, used, m.quota)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.data = make(map[string][]byte)
	return nil
}

func (m *MemoryStore) Usage() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return usage(m.data), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// usage counts key and value bytes, the way browsers account local storage.
func usage(data map[string][]byte) int {
	total := 0
	for k, v := range data {
		total += len(k) + len(v)
	}
	return total
}

func usageAfter(data map[string][]byte, key string, value []byte) int {
	total := usage(data) + len(key) + len(value)
	if old, ok := data[key]; ok {
		total -= len(key) + len(old)
	}
	return total
}
