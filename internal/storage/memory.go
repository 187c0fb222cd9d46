package storage

import (
	"fmt"
	"strconv"
	"sync"
)

// MemoryStore implements SecretStore and KeyValueStore in memory.
// SetError makes every subsequent operation fail until cleared.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// SetError injects err into every operation; nil restores normal behavior
func (m *MemoryStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func (m *MemoryStore) Read(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) ReadInt(key string) (int, error) {
	v, err := m.Read(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %w", key, err)
	}
	return n, nil
}

func (m *MemoryStore) WriteInt(key string, value int) error {
	return m.Write(key, strconv.Itoa(value))
}

func (m *MemoryStore) ReadSecure(key string) (string, error) {
	return m.Read(key)
}

func (m *MemoryStore) WriteSecure(key, value string) error {
	return m.Write(key, value)
}

func (m *MemoryStore) DeleteSecure(key string) error {
	return m.Delete(key)
}
