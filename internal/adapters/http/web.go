package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"toursights/internal/adapters/http/middleware"
	"toursights/internal/adapters/metrics"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/application/orchestrators"
	"toursights/internal/domain/quiz"
)

// HealthChecker reports whether the backing database answers.
type HealthChecker interface {
	Ping() error
}

// Deps holds the collaborators of every handler.
type Deps struct {
	Backend  kv.Backend
	Registry *orchestrators.TrackingRegistry
	Locks    *orchestrators.ScopeLocks
	Catalog  quiz.Catalog
	// Metrics may be nil; /metrics is then not served.
	Metrics *metrics.Metrics
	Health  HealthChecker
}

// Options configures the HTTP surface.
type Options struct {
	StaticDir          string
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerSecond float64
	RateBurst          int
	SlowRequest        time.Duration
}

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type server struct {
	deps   Deps
	intros map[int]string
}

// NewMux wires HTTP handlers for the tour.
// The rate limiter's cleanup goroutine ends with ctx.
// PRE: deps.Backend, deps.Registry and deps.Locks are non-nil; opts.CSRFKey is 32 bytes
func NewMux(ctx context.Context, opts Options, deps Deps) (http.Handler, error) {
	if err := deps.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid station catalog: %w", err)
	}
	s := &server{deps: deps, intros: make(map[int]string, len(deps.Catalog))}
	for _, st := range deps.Catalog {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(st.Intro), &buf); err != nil {
			return nil, fmt.Errorf("render intro of station %d: %w", st.ID, err)
		}
		s.intros[st.ID] = buf.String()
	}

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(opts.StaticDir)))
	}
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, opts.RateLimitPerSecond, opts.RateBurst)

	// Apply middleware: Timing -> RateLimit -> Device -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.SecureCookies,
			TrustedOrigins: opts.TrustedOrigins,
			ErrorHandler:   http.HandlerFunc(s.handleCSRFFailure),
		}),
		middleware.Device(middleware.DeviceOptions{Secure: opts.SecureCookies}),
		middleware.RateLimit(limiter, http.HandlerFunc(s.handleRateLimited)),
		middleware.Timing(middleware.TimingOptions{
			Observer: deps.Metrics,
			Route: func(r *http.Request) string {
				_, pattern := mux.Handler(r)
				return pattern
			},
			SlowThreshold: opts.SlowRequest,
		}),
	), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stations", s.handleListStations)
	mux.HandleFunc("GET /api/stations/{id}", s.handleGetStation)
	mux.HandleFunc("POST /api/stations/{id}/submit", s.handleSubmitQuiz)

	mux.HandleFunc("POST /api/users", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("PUT /api/session", s.handleSetSession)

	mux.HandleFunc("GET /api/tracking", s.handleTrackingStatus)
	mux.HandleFunc("POST /api/tracking/start", s.handleTrackingStart)
	mux.HandleFunc("POST /api/tracking/stop", s.handleTrackingStop)
	mux.HandleFunc("POST /api/tracking/save", s.handleTrackingSave)
	mux.HandleFunc("POST /api/tracking/samples", s.handleTrackingSample)

	mux.HandleFunc("GET /api/progress", s.handleProgress)
	mux.HandleFunc("DELETE /api/device", s.handleClearDevice)
	mux.HandleFunc("GET /api/csrf", s.handleCSRFToken)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}
}
