package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"toursights/internal/adapters/location"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/domain/tracking"
)

// DefaultIncrementKm is added per simulated tick.
const DefaultIncrementKm = 0.01

// TrackingObserver is notified of every event a session handles. *metrics.Metrics satisfies it.
type TrackingObserver interface {
	TrackingSample(mode, outcome string)
}

// TrackingSessionDeps holds dependencies for a TrackingSession.
type TrackingSessionDeps struct {
	Store       KVStore
	Simulated   location.Source
	IncrementKm float64
	Observer    TrackingObserver
	Now         func() time.Time
}

// TrackingStatus is a snapshot of a session.
type TrackingStatus struct {
	RunID      string  `json:"runId,omitempty"`
	State      string  `json:"state"`
	Mode       string  `json:"mode,omitempty"`
	DistanceKm float64 `json:"distanceKm"`
	Display    string  `json:"display"`
	LastError  string  `json:"lastError,omitempty"`
}

// TrackingSession accumulates travel distance for one device.
// Every source callback carries the generation of the run that started it;
// callbacks from an earlier generation are dropped, so once Stop returns no
// further increment is applied.
type TrackingSession struct {
	deps TrackingSessionDeps

	mu         sync.Mutex
	run        tracking.Run
	gen        uint64
	runID      string
	cancel     context.CancelFunc
	runCtx     context.Context
	feed       *location.Feed
	lastActive time.Time
}

// NewTrackingSession creates an idle session continuing from the stored distance.
// PRE: deps.Store and deps.Simulated are non-nil
// POST: State is idle; distance is the stored value or 0 when absent or unusable
func NewTrackingSession(ctx context.Context, deps TrackingSessionDeps) *TrackingSession {
	if deps.IncrementKm <= 0 {
		deps.IncrementKm = DefaultIncrementKm
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &TrackingSession{
		deps:       deps,
		run:        tracking.NewRun(kv.Get(ctx, deps.Store, tracking.StorageKeyDistance, 0.0)),
		lastActive: deps.Now(),
	}
}

// Start begins a run in the given mode.
// The source keeps running after ctx ends; only Stop or Save end it.
// PRE: mode is simulated or gps
// POST: State is running with a fresh run id
func (s *TrackingSession) Start(ctx context.Context, mode string) (TrackingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.run.Start(mode); err != nil {
		return s.statusLocked(), err
	}

	s.gen++
	gen := s.gen
	s.runID = uuid.NewString()

	var src location.Source = s.deps.Simulated
	s.feed = nil
	if mode == tracking.ModeGPS {
		s.feed = location.NewFeed()
		src = s.feed
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCtx = runCtx
	s.cancel = cancel
	go src.Run(runCtx, func(e location.Event) { s.handle(gen, e) })

	slog.Info("tracking_event", "event", "started", "run_id", s.runID, "mode", mode, "distance_km", s.run.DistanceKm())
	return s.statusLocked(), nil
}

// Stop ends the running run without persisting.
// POST: State is stopped; no increment is applied after Stop returns
func (s *TrackingSession) Stop() (TrackingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.run.Stop(); err != nil {
		return s.statusLocked(), err
	}
	s.endRunLocked()
	slog.Info("tracking_event", "event", "stopped", "run_id", s.runID, "distance_km", s.run.DistanceKm())
	return s.statusLocked(), nil
}

// Save stops a running run and persists the current distance. Calling it again
// without a new run writes the same value.
// POST: ts_travel_distance holds DistanceKm
func (s *TrackingSession) Save(ctx context.Context) TrackingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.run.State() == tracking.StateRunning {
		_ = s.run.Stop()
		s.endRunLocked()
	}
	s.deps.Store.Set(ctx, tracking.StorageKeyDistance, s.run.DistanceKm())
	slog.Info("tracking_event", "event", "saved", "run_id", s.runID, "distance_km", s.run.DistanceKm())
	return s.statusLocked()
}

// PushSample delivers a measured position to a running gps run and returns
// the status after it was applied.
func (s *TrackingSession) PushSample(ctx context.Context, p tracking.Position) (TrackingStatus, error) {
	return s.push(ctx, location.Event{Kind: location.KindSample, Position: p})
}

// ReportFailure records that the device could not obtain a position.
// The run keeps going; the failure is exposed as LastError.
func (s *TrackingSession) ReportFailure(ctx context.Context, reason string) (TrackingStatus, error) {
	return s.push(ctx, location.Event{Kind: location.KindError, Reason: reason})
}

func (s *TrackingSession) push(ctx context.Context, e location.Event) (TrackingStatus, error) {
	s.mu.Lock()
	s.touch()
	if s.run.State() != tracking.StateRunning {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, tracking.ErrNotRunning
	}
	if s.feed == nil {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, tracking.ErrModeMismatch
	}
	feed, runCtx := s.feed, s.runCtx
	s.mu.Unlock()

	// The feed's Run loop takes s.mu, so the lock must not be held here.
	pushCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopAfter := context.AfterFunc(runCtx, cancel)
	defer stopAfter()

	if err := feed.Push(pushCtx, e); err != nil {
		if runCtx.Err() != nil {
			return s.Status(), tracking.ErrNotRunning
		}
		return s.Status(), err
	}
	return s.Status(), nil
}

// Status returns a snapshot of the session.
func (s *TrackingSession) Status() TrackingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Expired reports whether the session was unused for longer than idleTTL, or
// longer than runningTTL while a run is going. A runningTTL of 0 never expires
// running sessions.
func (s *TrackingSession) Expired(now time.Time, idleTTL, runningTTL time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	unused := now.Sub(s.lastActive)
	if s.run.State() == tracking.StateRunning {
		return runningTTL > 0 && unused > runningTTL
	}
	return unused > idleTTL
}

// MarkUsed refreshes the last-use time.
func (s *TrackingSession) MarkUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

// abandon ends a running run without persisting it.
func (s *TrackingSession) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run.Stop() != nil {
		return
	}
	s.endRunLocked()
	slog.Info("tracking_event", "event", "abandoned", "run_id", s.runID, "distance_km", s.run.DistanceKm())
}

// handle applies one source event if it belongs to the current run.
func (s *TrackingSession) handle(gen uint64, e location.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := s.run.Mode()
	if gen != s.gen || s.run.State() != tracking.StateRunning {
		s.observe(mode, tracking.OutcomeStale)
		return
	}

	switch e.Kind {
	case location.KindTick:
		s.run.AddIncrement(s.deps.IncrementKm)
		s.observe(mode, tracking.OutcomeApplied)
	case location.KindSample:
		if !e.Position.Valid() {
			slog.Debug("tracking_event", "event", "sample_ignored", "run_id", s.runID)
			s.observe(mode, tracking.OutcomeIgnored)
			return
		}
		s.run.AddSample(e.Position)
		s.observe(mode, tracking.OutcomeApplied)
	case location.KindError:
		s.run.Fail(e.Reason)
		slog.Warn("tracking_event", "event", "location_unavailable", "run_id", s.runID, "reason", e.Reason)
		s.observe(mode, tracking.OutcomeFailed)
	}
}

// endRunLocked invalidates callbacks of the current run and cancels its source.
func (s *TrackingSession) endRunLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.feed = nil
}

func (s *TrackingSession) statusLocked() TrackingStatus {
	st := TrackingStatus{
		RunID:      s.runID,
		State:      s.run.State(),
		Mode:       s.run.Mode(),
		DistanceKm: s.run.DistanceKm(),
		Display:    tracking.FormatKm(s.run.DistanceKm()),
	}
	if err := s.run.LastErr(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

func (s *TrackingSession) touch() {
	s.lastActive = s.deps.Now()
}

func (s *TrackingSession) observe(mode, outcome string) {
	if s.deps.Observer != nil {
		s.deps.Observer.TrackingSample(mode, outcome)
	}
}
