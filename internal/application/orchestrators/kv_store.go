package orchestrators

import (
	"context"
	"sync"
)

// KVStore is the device-scoped typed store every orchestrator reads and writes.
// *kv.Store satisfies it.
type KVStore interface {
	Scope() string
	Lookup(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
}

// ScopeLocks serializes read-modify-write sequences per device scope.
// The zero value is ready to use.
type ScopeLocks struct {
	mu    sync.Mutex
	locks map[string]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until scope is free and returns the matching unlock.
// POST: entries are dropped once no caller holds or waits for them
func (l *ScopeLocks) Lock(scope string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*scopeLock)
	}
	sl, ok := l.locks[scope]
	if !ok {
		sl = &scopeLock{}
		l.locks[scope] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, scope)
		}
		l.mu.Unlock()
	}
}

// held returns the number of scopes with a holder or waiter.
func (l *ScopeLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
