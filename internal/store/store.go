// Package store defines the durable key-value storage the todo list persists into.
// Values are strings; the list serialises itself to JSON before writing.
package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a string-valued key-value store.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Close() error
}

// Memory is a KV that lives for the process only. Used by tests and the "memory" driver.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
