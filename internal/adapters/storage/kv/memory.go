package kv

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend for tests and ephemeral runs.
type MemoryBackend struct {
	mu          sync.RWMutex
	scopes      map[string]map[string]string
	unavailable bool
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{scopes: make(map[string]map[string]string)}
}

// SetUnavailable makes every subsequent call fail with ErrUnavailable until reset.
func (m *MemoryBackend) SetUnavailable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = v
}

// GetRaw implements Backend.
func (m *MemoryBackend) GetRaw(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return "", false, ErrUnavailable
	}
	v, ok := m.scopes[scope][key]
	return v, ok, nil
}

// SetRaw implements Backend.
func (m *MemoryBackend) SetRaw(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	entries, ok := m.scopes[scope]
	if !ok {
		entries = make(map[string]string)
		m.scopes[scope] = entries
	}
	entries[key] = value
	return nil
}

// DeleteScope implements Backend.
func (m *MemoryBackend) DeleteScope(_ context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	delete(m.scopes, scope)
	return nil
}
