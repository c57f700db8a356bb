package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"toursights/internal/adapters/http/view"
	"toursights/internal/application/projections"
)

type progressResponse struct {
	Progress projections.GetProgressResult `json:"progress"`
	Elements view.Elements                 `json:"elements"`
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}
	res := projections.QueryGetProgress(r.Context(), projections.GetProgressDeps{Store: store, Catalog: s.deps.Catalog})
	writeJSON(w, http.StatusOK, progressResponse{Progress: res, Elements: view.ProgressElements(res)})
}

// handleClearDevice deletes every stored value of the device and drops its tracking session.
func (s *server) handleClearDevice(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}
	// The session goes first so a concurrent save cannot write into the cleared scope.
	s.deps.Registry.Forget(store.Scope())
	if err := store.Clear(r.Context()); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": p.Sprintf(view.MsgDeviceCleared)})
}

// handleCSRFToken hands form pages the token for their hidden field.
func (s *server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"token":     csrf.Token(r),
		"fieldName": "gorilla.csrf.Token",
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(); err != nil {
			slog.Error("health_check_failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
