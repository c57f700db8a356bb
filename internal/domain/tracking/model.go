package tracking

import (
	"errors"
	"math"
	"strconv"
)

// StorageKeyDistance is where the cumulative distance is persisted.
const StorageKeyDistance = "ts_travel_distance"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// State constants for the tracking lifecycle.
const (
	StateIdle    = "idle"
	StateRunning = "running"
	StateStopped = "stopped"
)

// Mode constants select the increment source.
const (
	ModeSimulated = "simulated"
	ModeGPS       = "gps"
)

// Outcome constants label how a session handled one source event.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// Domain errors
var (
	ErrAlreadyRunning      = errors.New("tracking is already running")
	ErrNotRunning          = errors.New("tracking is not running")
	ErrInvalidMode         = errors.New("mode must be one of: simulated, gps")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrModeMismatch        = errors.New("position samples are only accepted in gps mode")
)

// Position is a WGS84 coordinate in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the position is a usable sample.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Position) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	x := math.Pow(math.Sin(dLat/2), 2) +
		math.Pow(math.Sin(dLng/2), 2)*math.Cos(lat1)*math.Cos(lat2)

	// Rounding can push x marginally above 1 for antipodal points.
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(math.Min(1, x)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// SanitizeKm turns a stored distance into a usable starting value.
func SanitizeKm(km float64) float64 {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return 0
	}
	return km
}

// FormatKm renders km truncated (not rounded) to two decimals.
func FormatKm(km float64) string {
	km = SanitizeKm(km)
	// The epsilon keeps values like 0.29 (0.28999...) from dropping a hundredth.
	truncated := math.Floor(km*100+1e-9) / 100
	return strconv.FormatFloat(truncated, 'f', 2, 64)
}

// IsValidMode reports whether mode is a known increment source.
func IsValidMode(mode string) bool {
	return mode == ModeSimulated || mode == ModeGPS
}

// Run holds the accumulated distance and lifecycle state of one device's tracking.
// The zero value is an idle run at 0 km.
type Run struct {
	state      string
	mode       string
	distanceKm float64
	last       Position
	hasLast    bool
	lastErr    error
}

// NewRun creates an idle run continuing from a previously stored distance.
// POST: DistanceKm() >= 0
func NewRun(initialKm float64) Run {
	return Run{state: StateIdle, distanceKm: SanitizeKm(initialKm)}
}

// State returns the lifecycle state.
func (r *Run) State() string {
	if r.state == "" {
		return StateIdle
	}
	return r.state
}

// Mode returns the mode of the current or most recent run.
func (r *Run) Mode() string { return r.mode }

// DistanceKm returns the accumulated distance.
func (r *Run) DistanceKm() float64 { return r.distanceKm }

// LastErr returns the most recent sampling failure of the current run, if any.
func (r *Run) LastErr() error { return r.lastErr }

// Start transitions Idle/Stopped -> Running.
// PRE: mode is valid
// POST: state is running; the previous reference position and error are cleared
func (r *Run) Start(mode string) error {
	if !IsValidMode(mode) {
		return ErrInvalidMode
	}
	if r.State() == StateRunning {
		return ErrAlreadyRunning
	}
	r.state = StateRunning
	r.mode = mode
	r.hasLast = false
	r.lastErr = nil
	return nil
}

// Stop transitions Running -> Stopped.
// POST: state is stopped; distance is unchanged
func (r *Run) Stop() error {
	if r.State() != StateRunning {
		return ErrNotRunning
	}
	r.state = StateStopped
	return nil
}

// AddIncrement adds a fixed simulated increment.
// Non-positive or non-finite increments are ignored.
// POST: returns the applied delta (>= 0)
func (r *Run) AddIncrement(km float64) float64 {
	if r.State() != StateRunning || SanitizeKm(km) == 0 {
		return 0
	}
	r.distanceKm += km
	return km
}

// AddSample accumulates the great-circle distance from the previous sample.
// The first sample of a run only sets the reference point. Invalid samples are ignored.
// POST: returns the applied delta (>= 0)
func (r *Run) AddSample(p Position) float64 {
	if r.State() != StateRunning || !p.Valid() {
		return 0
	}
	if !r.hasLast {
		r.last = p
		r.hasLast = true
		return 0
	}
	delta := SanitizeKm(Haversine(r.last, p))
	r.distanceKm += delta
	r.last = p
	return delta
}

// Fail records a sampling failure. The run stays in its current state.
// POST: LastErr() wraps ErrLocationUnavailable
func (r *Run) Fail(reason string) {
	if reason == "" {
		r.lastErr = ErrLocationUnavailable
		return
	}
	r.lastErr = &locationError{reason: reason}
}

type locationError struct {
	reason string
}

func (e *locationError) Error() string {
	return ErrLocationUnavailable.Error() + ": " + e.reason
}

func (e *locationError) Unwrap() error {
	return ErrLocationUnavailable
}
