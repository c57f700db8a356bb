package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method, route, status})
}

func (r *recordingObserver) all() []observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observation(nil), r.obs...)
}

func routeOf(mux *http.ServeMux) func(*http.Request) string {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}
}

// TestTiming_RecordsRoutePattern verifies observations use the matched pattern, not the raw path.
func TestTiming_RecordsRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/stations/{id}/submit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	obs := &recordingObserver{}
	handler := Timing(TimingOptions{Observer: obs, Route: routeOf(mux)})(mux)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/stations/3/submit", nil))

	got := obs.all()
	if len(got) != 1 {
		t.Fatalf("observations = %d, want 1", len(got))
	}
	want := observation{http.MethodPost, "POST /api/stations/{id}/submit", http.StatusCreated}
	if got[0] != want {
		t.Errorf("observation = %+v, want %+v", got[0], want)
	}
}

// TestTiming_SkipsStatic verifies static assets are excluded from timing.
func TestTiming_SkipsStatic(t *testing.T) {
	obs := &recordingObserver{}
	handler := Timing(TimingOptions{Observer: obs})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	if len(obs.all()) != 0 {
		t.Errorf("observations = %d, want 0 (static excluded)", len(obs.all()))
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_UnmatchedRoute verifies requests without a pattern share one label.
func TestTiming_UnmatchedRoute(t *testing.T) {
	mux := http.NewServeMux()
	obs := &recordingObserver{}
	handler := Timing(TimingOptions{Observer: obs, Route: routeOf(mux)})(mux)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	got := obs.all()
	if len(got) != 1 || got[0].route != unmatchedRoute || got[0].status != http.StatusNotFound {
		t.Errorf("observations = %+v", got)
	}
}

// TestTiming_NilObserver verifies middleware works without an observer.
func TestTiming_NilObserver(t *testing.T) {
	handler := Timing(TimingOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/progress", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
