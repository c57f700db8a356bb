package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"toursights/internal/adapters/http/middleware"
	"toursights/internal/adapters/location"
	"toursights/internal/adapters/metrics"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/application/orchestrators"
	"toursights/internal/domain/quiz"
	"toursights/internal/domain/tracking"
	"toursights/internal/domain/user"
)

const (
	deviceA = "8a0f4a8e-5b7e-4f53-9a39-0c3f2d1b7e01"
	deviceB = "8a0f4a8e-5b7e-4f53-9a39-0c3f2d1b7e02"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

type stubHealth struct{ err error }

func (s stubHealth) Ping() error { return s.err }

type testEnv struct {
	handler  http.Handler
	backend  *kv.MemoryBackend
	registry *orchestrators.TrackingRegistry
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	backend := kv.NewMemoryBackend()
	m := metrics.New()
	registry := orchestrators.NewTrackingRegistry(orchestrators.TrackingRegistryDeps{
		// Never ticks within a test; simulated distance stays put.
		Simulated: location.NewSimulated(time.Hour),
		Observer:  m,
		Gauge:     m,
	})
	h, err := NewMux(ctx, Options{
		CSRFKey:            testCSRFKey,
		RateLimitPerSecond: 1000,
		RateBurst:          1000,
	}, Deps{
		Backend:  backend,
		Registry: registry,
		Locks:    &orchestrators.ScopeLocks{},
		Catalog:  quiz.DefaultCatalog,
		Metrics:  m,
		Health:   stubHealth{},
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	return &testEnv{handler: h, backend: backend, registry: registry, metrics: m}
}

// do sends a JSON API request from device.
func (e *testEnv) do(t *testing.T, device, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.DeviceCookieName, Value: device})
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func storedRaw(t *testing.T, b *kv.MemoryBackend, device, key string) (string, bool) {
	t.Helper()
	raw, ok, err := b.GetRaw(context.Background(), device, key)
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	return raw, ok
}

// TestStations_List verifies the map markers.
func TestStations_List(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, deviceA, http.MethodGet, "/api/stations", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	markers := decode[[]stationMarker](t, rr)
	if len(markers) != 4 {
		t.Fatalf("markers = %d, want 4", len(markers))
	}
	wantMax := []int{3, 9, 8, 8}
	for i, m := range markers {
		if m.ID != i+1 || m.MaxScore != wantMax[i] || m.Lat == 0 || m.Lng == 0 {
			t.Errorf("marker %d = %+v", i, m)
		}
	}
}

// TestStations_Get verifies the intro is rendered and unknown ids are 404.
func TestStations_Get(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodGet, "/api/stations/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	detail := decode[stationDetail](t, rr)
	if !strings.Contains(detail.IntroHTML, "<strong>Digital Studio</strong>") {
		t.Errorf("IntroHTML = %q", detail.IntroHTML)
	}
	if strings.Join(detail.QuestionIDs, ",") != "q1,q2,q3" {
		t.Errorf("QuestionIDs = %v", detail.QuestionIDs)
	}

	for _, path := range []string{"/api/stations/9", "/api/stations/abc"} {
		rr := env.do(t, deviceA, http.MethodGet, path, "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rr.Code)
		}
		if resp := decode[errorResponse](t, rr); resp.Message != "Diese Station gibt es nicht." {
			t.Errorf("%s: message = %q", path, resp.Message)
		}
	}
}

// TestSubmitQuiz_StationOne verifies grading, feedback, storage and progress.
func TestSubmitQuiz_StationOne(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodPost, "/api/stations/1/submit",
		`{"answers":{"q1":"b","q2":"a","q3":"c"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[submitQuizResponse](t, rr)
	if resp.Result.Score != 2 || resp.Result.MaxScore != 3 {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.Elements["station1-score-message"] != "Du hast 2 von 3 Punkten erreicht." {
		t.Errorf("elements = %v", resp.Elements)
	}
	if resp.Feedback["q1"] != "Richtig ✓" || resp.Feedback["q2"] != "Falsch ✗" || resp.Feedback["q3"] != "Richtig ✓" {
		t.Errorf("feedback = %v", resp.Feedback)
	}
	if raw, _ := storedRaw(t, env.backend, deviceA, "ts_station1_points"); raw != "2" {
		t.Errorf("ts_station1_points = %q, want 2", raw)
	}

	progress := decode[progressResponse](t, env.do(t, deviceA, http.MethodGet, "/api/progress", ""))
	if progress.Progress.TotalPoints != 2 || progress.Elements["station1-points"] != "2" {
		t.Errorf("progress = %+v", progress)
	}

	// Another device is unaffected.
	other := decode[progressResponse](t, env.do(t, deviceB, http.MethodGet, "/api/progress", ""))
	if other.Progress.TotalPoints != 0 {
		t.Errorf("other device total = %d, want 0", other.Progress.TotalPoints)
	}
}

// TestSubmitQuiz_English verifies the language query parameter.
func TestSubmitQuiz_English(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, deviceA, http.MethodPost, "/api/stations/1/submit?lang=en", `{"answers":{}}`)
	resp := decode[submitQuizResponse](t, rr)
	if resp.Message != "You scored 0 of 3 points." || resp.Feedback["q1"] != "No answer selected." {
		t.Errorf("resp = %+v", resp)
	}
	var langCookie bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "ts_lang" && c.Value == "en" {
			langCookie = true
		}
	}
	if !langCookie {
		t.Error("explicit lang should be persisted in ts_lang")
	}
}

// TestSubmitQuiz_BadBody verifies unknown fields are rejected.
func TestSubmitQuiz_BadBody(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, deviceA, http.MethodPost, "/api/stations/1/submit", `{"answer":{"q1":"b"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// TestRegisterAndLogin walks the register, login and session flow.
func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodPost, "/api/users", `{"username":"ana","password":"x","role":"student"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rr.Code, rr.Body.String())
	}
	reg := decode[registerResponse](t, rr)
	if reg.User.Username != "ana" || reg.Elements["register-message"] == "" {
		t.Errorf("register = %+v", reg)
	}
	if strings.Contains(rr.Body.String(), `"password"`) {
		t.Error("response must not echo the password")
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/users", `{"username":"ana","password":"y","role":"teacher"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rr.Code)
	}
	if dup := decode[errorResponse](t, rr); dup.Error != "register.duplicate" || dup.Elements["register-message"] == "" {
		t.Errorf("duplicate = %+v", dup)
	}

	session := decode[sessionResponse](t, env.do(t, deviceA, http.MethodGet, "/api/session", ""))
	if session.LoggedIn {
		t.Error("registration must not log in")
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/login", `{"username":"ana","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rr.Code)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/login", `{"username":" ana ","password":"x"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rr.Code, rr.Body.String())
	}

	session = decode[sessionResponse](t, env.do(t, deviceA, http.MethodGet, "/api/session", ""))
	if !session.LoggedIn || session.Session == nil || *session.Session != (user.Session{Username: "ana", Role: "student"}) {
		t.Errorf("session = %+v", session)
	}
	if session.Elements["current-user-info"] != "Sie sind als ana (student) angemeldet" {
		t.Errorf("current-user-info = %q", session.Elements["current-user-info"])
	}

	// Users are device-scoped.
	rr = env.do(t, deviceB, http.MethodPost, "/api/login", `{"username":"ana","password":"x"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("other device login status = %d, want 401", rr.Code)
	}
}

// TestRegister_Validation verifies 400 answers for rejected inputs.
func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		body    string
		wantKey string
	}{
		{`{"username":"  ","password":"x","role":"student"}`, "register.missing_credentials"},
		{`{"username":"ana","password":"x","role":"admin"}`, "register.invalid_role"},
		{`{"username":"ana","password":"x","role":"student","class":"` + strings.Repeat("c", 40) + `"}`, "register.input_too_long"},
		{`not json`, "error.bad_request"},
	}
	for _, tt := range tests {
		rr := env.do(t, deviceA, http.MethodPost, "/api/users", tt.body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.body, rr.Code)
		}
		if resp := decode[errorResponse](t, rr); resp.Error != tt.wantKey {
			t.Errorf("%s: error = %q, want %q", tt.body, resp.Error, tt.wantKey)
		}
	}
}

// TestRegister_FormWithoutToken verifies form posts are CSRF protected.
func TestRegister_FormWithoutToken(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"username": {"ana"}, "password": {"x"}, "role": {"student"}}
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.DeviceCookieName, Value: deviceA})
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if _, ok := storedRaw(t, env.backend, deviceA, user.StorageKeyUsers); ok {
		t.Error("rejected form must not register a user")
	}
}

// TestSetSession verifies the direct session-set.
func TestSetSession(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodPut, "/api/session", `{"username":"ben","role":"teacher","class":"4A"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[sessionResponse](t, rr)
	if resp.Message != "Angemeldet als ben." || resp.Elements["current-user-info"] != "Sie sind als ben (teacher, 4A) angemeldet" {
		t.Errorf("resp = %+v", resp)
	}

	rr = env.do(t, deviceA, http.MethodPut, "/api/session", `{"username":"","role":"teacher"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty username status = %d, want 400", rr.Code)
	}
	if resp := decode[errorResponse](t, rr); resp.Message != "Bitte Benutzername eingeben" {
		t.Errorf("message = %q", resp.Message)
	}
}

// TestTracking_SimulatedStartStopSave verifies lifecycle and persistence rules.
func TestTracking_SimulatedStartStopSave(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodPost, "/api/tracking/stop", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("stop while idle status = %d, want 409", rr.Code)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"simulated"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", rr.Code, rr.Body.String())
	}
	started := decode[trackingResponse](t, rr)
	if started.Status.State != tracking.StateRunning || started.Status.RunID == "" {
		t.Errorf("started = %+v", started.Status)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"simulated"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rr.Code)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/stop", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stop status = %d", rr.Code)
	}
	if _, ok := storedRaw(t, env.backend, deviceA, tracking.StorageKeyDistance); ok {
		t.Error("stop must not persist the distance")
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/save", "")
	saved := decode[trackingResponse](t, rr)
	if saved.Message != "Reise gespeichert! Gesamt-Kilometer: 0.00 km" || saved.Elements["distance-value"] != "0.00" {
		t.Errorf("saved = %+v", saved)
	}
	if raw, _ := storedRaw(t, env.backend, deviceA, tracking.StorageKeyDistance); raw != "0" {
		t.Errorf("stored distance = %q, want 0", raw)
	}
}

// TestTracking_InvalidMode verifies unknown modes are rejected.
func TestTracking_InvalidMode(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"teleport"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// TestTracking_GPSSamples verifies samples accumulate distance and errors are reported.
func TestTracking_GPSSamples(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", `{"lat":48.3069,"lng":14.2858}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("sample while idle status = %d, want 409", rr.Code)
	}

	env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"gps"}`)
	for _, body := range []string{
		`{"lat":48.3069,"lng":14.2858}`,
		`{"lat":48.3069,"lng":14.2858}`,
	} {
		if rr := env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", body); rr.Code != http.StatusOK {
			t.Fatalf("sample status = %d: %s", rr.Code, rr.Body.String())
		}
	}
	st := decode[trackingResponse](t, env.do(t, deviceA, http.MethodGet, "/api/tracking", ""))
	if st.Status.Display != "0.00" {
		t.Errorf("identical samples display = %q, want 0.00", st.Status.Display)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", `{"lat":48.3071,"lng":14.2849}`)
	moved := decode[trackingResponse](t, rr)
	if moved.Status.Display != "0.07" {
		t.Errorf("display after moving = %q, want 0.07", moved.Status.Display)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", `{"error":"permission denied"}`)
	failed := decode[trackingResponse](t, rr)
	if failed.Status.LastError == "" || failed.Elements["tracking-message"] != "Standort konnte nicht abgerufen werden." {
		t.Errorf("failed = %+v", failed)
	}
	if failed.Status.State != tracking.StateRunning {
		t.Errorf("state after failure = %q, want running", failed.Status.State)
	}

	rr = env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", `{"lat":48.3}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("half sample status = %d, want 400", rr.Code)
	}

	status := decode[trackingResponse](t, env.do(t, deviceA, http.MethodGet, "/api/tracking", ""))
	if status.Elements["tracking-message"] != "Standort konnte nicht abgerufen werden." {
		t.Errorf("status message = %q", status.Elements["tracking-message"])
	}
	saved := decode[trackingResponse](t, env.do(t, deviceA, http.MethodPost, "/api/tracking/save", ""))
	if got := saved.Elements["tracking-message"]; got != "Reise gespeichert! Gesamt-Kilometer: 0.07 km" {
		t.Errorf("save message after a location failure = %q", got)
	}
}

// TestTracking_SampleInSimulatedMode verifies samples are refused outside gps mode.
func TestTracking_SampleInSimulatedMode(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"simulated"}`)
	rr := env.do(t, deviceA, http.MethodPost, "/api/tracking/samples", `{"lat":48.3069,"lng":14.2858}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

// TestClearDevice verifies every value and the tracking session of a device are dropped.
func TestClearDevice(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, deviceA, http.MethodPost, "/api/stations/1/submit", `{"answers":{"q1":"b"}}`)
	env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"simulated"}`)
	env.do(t, deviceB, http.MethodPost, "/api/stations/1/submit", `{"answers":{"q1":"b"}}`)

	rr := env.do(t, deviceA, http.MethodDelete, "/api/device", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if _, ok := storedRaw(t, env.backend, deviceA, "ts_station1_points"); ok {
		t.Error("device A still has a score")
	}
	if _, ok := storedRaw(t, env.backend, deviceB, "ts_station1_points"); !ok {
		t.Error("device B lost its score")
	}
	st := decode[trackingResponse](t, env.do(t, deviceA, http.MethodGet, "/api/tracking", ""))
	if st.Status.State != tracking.StateIdle {
		t.Errorf("state after clear = %q, want idle", st.Status.State)
	}
}

// clearOrderBackend runs onDelete before a scope is deleted.
type clearOrderBackend struct {
	*kv.MemoryBackend
	onDelete func()
}

func (b *clearOrderBackend) DeleteScope(ctx context.Context, scope string) error {
	b.onDelete()
	return b.MemoryBackend.DeleteScope(ctx, scope)
}

// TestClearDevice_DropsSessionBeforeData verifies the tracking session is gone
// before the stored values are deleted, so nothing can save into the cleared scope.
func TestClearDevice_DropsSessionBeforeData(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := orchestrators.NewTrackingRegistry(orchestrators.TrackingRegistryDeps{Simulated: location.NewSimulated(time.Hour)})
	sessionsAtDelete := -1
	backend := &clearOrderBackend{
		MemoryBackend: kv.NewMemoryBackend(),
		onDelete:      func() { sessionsAtDelete = registry.Len() },
	}
	h, err := NewMux(ctx, Options{CSRFKey: testCSRFKey, RateLimitPerSecond: 1000, RateBurst: 1000}, Deps{
		Backend:  backend,
		Registry: registry,
		Locks:    &orchestrators.ScopeLocks{},
		Catalog:  quiz.DefaultCatalog,
		Health:   stubHealth{},
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	env := &testEnv{handler: h, backend: backend.MemoryBackend, registry: registry}

	env.do(t, deviceA, http.MethodPost, "/api/tracking/start", `{"mode":"simulated"}`)
	if rr := env.do(t, deviceA, http.MethodDelete, "/api/device", ""); rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if sessionsAtDelete != 0 {
		t.Errorf("sessions held while deleting = %d, want 0", sessionsAtDelete)
	}
}

// TestCSRFToken verifies a token is issued for form pages.
func TestCSRFToken(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/csrf", nil)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	resp := decode[map[string]string](t, rr)
	if resp["token"] == "" {
		t.Errorf("resp = %v", resp)
	}
}

// TestHealthAndMetrics verifies the operational endpoints.
func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	if rr := env.do(t, deviceA, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rr.Code)
	}

	env.do(t, deviceA, http.MethodPost, "/api/stations/2/submit", `{"answers":{"q1":"a"}}`)
	rr := env.do(t, deviceA, http.MethodGet, "/metrics", "")
	body := rr.Body.String()
	for _, want := range []string{
		"toursights_quiz_submissions_total",
		`route="POST /api/stations/{id}/submit"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

// TestHealth_Unavailable verifies a failing database yields 503.
func TestHealth_Unavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := NewMux(ctx, Options{CSRFKey: testCSRFKey, RateLimitPerSecond: 10, RateBurst: 10}, Deps{
		Backend:  kv.NewMemoryBackend(),
		Registry: orchestrators.NewTrackingRegistry(orchestrators.TrackingRegistryDeps{Simulated: location.NewSimulated(time.Hour)}),
		Locks:    &orchestrators.ScopeLocks{},
		Catalog:  quiz.DefaultCatalog,
		Health:   stubHealth{err: errors.New("disk gone")},
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

// TestNewMux_InvalidCatalog verifies catalog errors surface at startup.
func TestNewMux_InvalidCatalog(t *testing.T) {
	_, err := NewMux(context.Background(), Options{CSRFKey: testCSRFKey, RateLimitPerSecond: 1, RateBurst: 1}, Deps{
		Catalog: quiz.Catalog{{ID: 1, StorageKey: "k"}},
	})
	if err == nil {
		t.Error("expected error for a station without questions")
	}
}

// TestRateLimited verifies the localized 429 answer.
func TestRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := NewMux(ctx, Options{CSRFKey: testCSRFKey, RateLimitPerSecond: 0.001, RateBurst: 1}, Deps{
		Backend:  kv.NewMemoryBackend(),
		Registry: orchestrators.NewTrackingRegistry(orchestrators.TrackingRegistryDeps{Simulated: location.NewSimulated(time.Hour)}),
		Locks:    &orchestrators.ScopeLocks{},
		Catalog:  quiz.DefaultCatalog,
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/api/stations?lang=en", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if resp := decode[errorResponse](t, last); resp.Message != "Too many requests. Please wait a moment." {
		t.Errorf("message = %q", resp.Message)
	}
}
