package kv

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrUnavailable is returned by backends that cannot currently serve requests.
var ErrUnavailable = errors.New("key-value backend unavailable")

// Backend persists raw string values in isolated scopes.
// Every write is atomic per (scope, key); there is no cross-key transaction.
type Backend interface {
	GetRaw(ctx context.Context, scope, key string) (string, bool, error)
	SetRaw(ctx context.Context, scope, key, value string) error
	DeleteScope(ctx context.Context, scope string) error
}

// Store is a typed JSON view of one scope of a Backend.
// Reads fall back to defaults and writes are best effort: neither returns an error.
type Store struct {
	backend Backend
	scope   string
}

// New binds backend to scope.
// PRE: backend is non-nil, scope is non-empty
func New(backend Backend, scope string) *Store {
	return &Store{backend: backend, scope: scope}
}

// Scope returns the namespace this store reads and writes.
func (s *Store) Scope() string {
	return s.scope
}

// Lookup decodes the value stored under key into dst.
// Returns false when the key is absent, the stored text is not valid JSON for dst,
// or the backend fails. On a decode failure dst may be partially written.
// INVARIANT: Store state is not mutated
func (s *Store) Lookup(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.backend.GetRaw(ctx, s.scope, key)
	if err != nil {
		slog.Warn("kv_read_failed", "scope", s.scope, "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Debug("kv_malformed_value", "scope", s.scope, "key", key, "error", err)
		return false
	}
	return true
}

// Set encodes value as JSON and writes it under key.
// Failures are logged and swallowed; callers must not assume the value persisted.
func (s *Store) Set(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		slog.Warn("kv_write_failed", "scope", s.scope, "key", key, "error", err)
		return
	}
	if err := s.backend.SetRaw(ctx, s.scope, key, string(b)); err != nil {
		slog.Warn("kv_write_failed", "scope", s.scope, "key", key, "error", err)
	}
}

// Clear removes every key of the scope.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.DeleteScope(ctx, s.scope)
}

// Reader is the read side of a Store.
type Reader interface {
	Lookup(ctx context.Context, key string, dst any) bool
}

// Get returns the value stored under key, or fallback when it is absent or unusable.
func Get[T any](ctx context.Context, r Reader, key string, fallback T) T {
	var v T
	if !r.Lookup(ctx, key, &v) {
		return fallback
	}
	return v
}
