package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcome labels.
const (
	loginSucceeded = "success"
	loginFailed    = "failure"
)

// Metrics owns a private Prometheus registry and every instrument the service exports.
// All methods are safe on a nil *Metrics so callers can run without instrumentation.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	quizSubmissions *prometheus.CounterVec
	logins          *prometheus.CounterVec
	registrations   prometheus.Counter
	trackingSamples *prometheus.CounterVec
	activeTrackers  prometheus.Gauge
}

// New creates and registers all instruments on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toursights_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toursights_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toursights_db_query_duration_seconds",
				Help:    "Duration of database statements",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"op"},
		),
		quizSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toursights_quiz_submissions_total",
				Help: "Quiz submissions by station and score",
			},
			[]string{"station", "score"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toursights_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "toursights_registrations_total",
			Help: "Successful user registrations",
		}),
		trackingSamples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toursights_tracking_samples_total",
				Help: "Tracking increments and samples by outcome",
			},
			[]string{"mode", "outcome"},
		),
		activeTrackers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toursights_tracking_sessions",
			Help: "Tracking sessions currently held in memory",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.queryDuration,
		m.quizSubmissions,
		m.logins,
		m.registrations,
		m.trackingSamples,
		m.activeTrackers,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveQuery records one database statement.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// QuizSubmitted counts a graded submission.
func (m *Metrics) QuizSubmitted(stationID, score int) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues(strconv.Itoa(stationID), strconv.Itoa(score)).Inc()
}

// LoginAttempted counts a login by outcome.
func (m *Metrics) LoginAttempted(ok bool) {
	if m == nil {
		return
	}
	outcome := loginFailed
	if ok {
		outcome = loginSucceeded
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// UserRegistered counts a successful registration.
func (m *Metrics) UserRegistered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

// TrackingSample counts an increment or location sample.
func (m *Metrics) TrackingSample(mode, outcome string) {
	if m == nil {
		return
	}
	m.trackingSamples.WithLabelValues(mode, outcome).Inc()
}

// TrackingSessions sets the number of sessions held by the registry.
func (m *Metrics) TrackingSessions(n int) {
	if m == nil {
		return
	}
	m.activeTrackers.Set(float64(n))
}
