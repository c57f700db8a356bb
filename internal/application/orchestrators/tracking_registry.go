package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"toursights/internal/adapters/location"
)

// SessionGauge receives the number of sessions held. *metrics.Metrics satisfies it.
type SessionGauge interface {
	TrackingSessions(n int)
}

// TrackingRegistryDeps holds dependencies shared by every session of a registry.
type TrackingRegistryDeps struct {
	Simulated   location.Source
	IncrementKm float64
	Observer    TrackingObserver
	Gauge       SessionGauge
	Now         func() time.Time
}

// TrackingRegistry holds one TrackingSession per device scope.
type TrackingRegistry struct {
	deps TrackingRegistryDeps

	mu       sync.Mutex
	sessions map[string]*TrackingSession
}

// NewTrackingRegistry creates an empty registry.
func NewTrackingRegistry(deps TrackingRegistryDeps) *TrackingRegistry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &TrackingRegistry{deps: deps, sessions: make(map[string]*TrackingSession)}
}

// Session returns the session of store's scope, creating it from the stored distance on first use.
// The returned session counts as used, so a sweep cannot drop it before the caller acts on it.
// POST: repeated calls for one scope return the same session until it is swept or forgotten
func (r *TrackingRegistry) Session(ctx context.Context, store KVStore) *TrackingSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[store.Scope()]; ok {
		s.MarkUsed()
		return s
	}
	s := NewTrackingSession(ctx, TrackingSessionDeps{
		Store:       store,
		Simulated:   r.deps.Simulated,
		IncrementKm: r.deps.IncrementKm,
		Observer:    r.deps.Observer,
		Now:         r.deps.Now,
	})
	r.sessions[store.Scope()] = s
	r.reportLocked()
	return s
}

// Forget stops and drops the session of scope without persisting it.
func (r *TrackingRegistry) Forget(scope string) {
	r.mu.Lock()
	s, ok := r.sessions[scope]
	delete(r.sessions, scope)
	r.reportLocked()
	r.mu.Unlock()

	if ok {
		_, _ = s.Stop()
	}
}

// Sweep drops sessions unused for longer than idleTTL. Running sessions are
// only dropped after runningTTL (0 keeps them); their run is ended without
// saving. A dropped session is reloaded from the store on next use, so only
// unsaved distance is lost.
// POST: returns the number of sessions dropped
func (r *TrackingRegistry) Sweep(idleTTL, runningTTL time.Duration) int {
	now := r.deps.Now()
	r.mu.Lock()
	var dropped []*TrackingSession
	for scope, s := range r.sessions {
		if s.Expired(now, idleTTL, runningTTL) {
			delete(r.sessions, scope)
			dropped = append(dropped, s)
		}
	}
	if len(dropped) > 0 {
		slog.Info("tracking_sweep", "dropped", len(dropped), "remaining", len(r.sessions))
		r.reportLocked()
	}
	r.mu.Unlock()

	for _, s := range dropped {
		s.abandon()
	}
	return len(dropped)
}

// Len returns the number of sessions held.
func (r *TrackingRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *TrackingRegistry) reportLocked() {
	if r.deps.Gauge != nil {
		r.deps.Gauge.TrackingSessions(len(r.sessions))
	}
}
