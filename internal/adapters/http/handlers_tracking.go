package web

import (
	"net/http"

	"golang.org/x/text/message"

	"toursights/internal/adapters/http/view"
	"toursights/internal/application/orchestrators"
	"toursights/internal/domain/tracking"
)

type trackingStartRequest struct {
	Mode string `json:"mode"`
}

// trackingSampleRequest carries either a position or the browser's geolocation error.
type trackingSampleRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

type trackingResponse struct {
	Status   orchestrators.TrackingStatus `json:"status"`
	Message  string                       `json:"message,omitempty"`
	Elements view.Elements                `json:"elements"`
}

// trackingSession returns the device's session, creating it from the stored distance.
func (s *server) trackingSession(w http.ResponseWriter, r *http.Request) (*orchestrators.TrackingSession, bool) {
	store, ok := s.withStore(w, r)
	if !ok {
		return nil, false
	}
	return s.deps.Registry.Session(r.Context(), store), true
}

// writeTracking answers with the session status. An explicit msg wins; without
// one a recorded location failure is shown.
func writeTracking(w http.ResponseWriter, p *message.Printer, st orchestrators.TrackingStatus, msg string) {
	elements := view.TrackingElements(st)
	switch {
	case msg != "":
		elements[view.ElementTrackingMessage] = msg
	case st.LastError != "":
		elements[view.ElementTrackingMessage] = p.Sprintf(view.MsgLocationUnavailable)
	}
	writeJSON(w, http.StatusOK, trackingResponse{Status: st, Message: msg, Elements: elements})
}

func (s *server) handleTrackingStatus(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	session, ok := s.trackingSession(w, r)
	if !ok {
		return
	}
	writeTracking(w, p, session.Status(), "")
}

// handleTrackingStart begins a run; {"mode": "simulated"} or {"mode": "gps"}.
func (s *server) handleTrackingStart(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	var req trackingStartRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementTrackingMessage)
		return
	}
	session, ok := s.trackingSession(w, r)
	if !ok {
		return
	}

	st, err := session.Start(r.Context(), req.Mode)
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementTrackingMessage)
		return
	}
	writeTracking(w, p, st, p.Sprintf(view.MsgTrackingStarted))
}

// handleTrackingStop ends the run without persisting the distance.
func (s *server) handleTrackingStop(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	session, ok := s.trackingSession(w, r)
	if !ok {
		return
	}

	st, err := session.Stop()
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementTrackingMessage)
		return
	}
	writeTracking(w, p, st, p.Sprintf(view.MsgTrackingStopped))
}

// handleTrackingSave stops a running run and persists the distance.
func (s *server) handleTrackingSave(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	session, ok := s.trackingSession(w, r)
	if !ok {
		return
	}

	st := session.Save(r.Context())
	writeTracking(w, p, st, p.Sprintf(view.MsgTrackingSaved, st.Display))
}

// handleTrackingSample feeds one geolocation reading into a running gps run.
func (s *server) handleTrackingSample(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	var req trackingSampleRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementTrackingMessage)
		return
	}
	if req.Error == "" && (req.Lat == nil || req.Lng == nil) {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementTrackingMessage)
		return
	}
	session, ok := s.trackingSession(w, r)
	if !ok {
		return
	}

	var (
		st  orchestrators.TrackingStatus
		err error
	)
	if req.Error != "" {
		st, err = session.ReportFailure(r.Context(), req.Error)
	} else {
		st, err = session.PushSample(r.Context(), tracking.Position{Lat: *req.Lat, Lng: *req.Lng})
	}
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementTrackingMessage)
		return
	}
	writeTracking(w, p, st, "")
}
