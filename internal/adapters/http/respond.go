package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/message"

	"toursights/internal/adapters/http/middleware"
	"toursights/internal/adapters/http/view"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/domain/quiz"
	"toursights/internal/domain/tracking"
	"toursights/internal/domain/user"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 64 << 10

// errorStatus maps domain errors to HTTP status codes.
var errorStatus = []struct {
	err    error
	status int
}{
	{user.ErrDuplicateUser, http.StatusConflict},
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrMissingCredentials, http.StatusBadRequest},
	{user.ErrMissingUsername, http.StatusBadRequest},
	{user.ErrInvalidRole, http.StatusBadRequest},
	{user.ErrUsernameTooLong, http.StatusBadRequest},
	{user.ErrClassTooLong, http.StatusBadRequest},
	{quiz.ErrUnknownStation, http.StatusNotFound},
	{tracking.ErrAlreadyRunning, http.StatusConflict},
	{tracking.ErrNotRunning, http.StatusConflict},
	{tracking.ErrModeMismatch, http.StatusConflict},
	{tracking.ErrInvalidMode, http.StatusBadRequest},
	{tracking.ErrLocationUnavailable, http.StatusUnprocessableEntity},
}

func statusFor(err error) int {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// errorResponse is the body of every 4xx answer.
type errorResponse struct {
	Error    string        `json:"error"`
	Message  string        `json:"message"`
	Elements view.Elements `json:"elements,omitempty"`
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	tag, _ := view.ResolveTag(r)
	p := view.Printer(tag)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   view.MsgInternal,
		Message: p.Sprintf(view.MsgInternal),
	})
}

// writeDomainError answers a domain error with its localized message.
// When element is set the message is also returned as that element's text.
// Errors outside the domain taxonomy become a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, p *message.Printer, err error, element string) {
	key, ok := view.ErrorMessageKey(err)
	if !ok {
		internalError(w, r, err)
		return
	}
	writeMessage(w, r, p, statusFor(err), key, element)
}

func writeMessage(w http.ResponseWriter, r *http.Request, p *message.Printer, status int, key, element string) {
	msg := p.Sprintf(key)
	if isHTMLRequest(r) {
		http.Error(w, msg, status)
		return
	}
	resp := errorResponse{Error: key, Message: msg}
	if element != "" {
		resp.Elements = view.Elements{element: msg}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isFormRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// printer resolves the request language and persists an explicit ?lang= choice.
func printer(w http.ResponseWriter, r *http.Request) *message.Printer {
	tag, persist := view.ResolveTag(r)
	if persist {
		view.SetLanguageCookie(w, tag)
	}
	w.Header().Set("Content-Language", tag.String())
	return view.Printer(tag)
}

// storeFor returns the key-value store of the requesting device.
func (s *server) storeFor(r *http.Request) (*kv.Store, bool) {
	device, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return kv.New(s.deps.Backend, device), true
}

// withStore resolves the device store or fails the request.
func (s *server) withStore(w http.ResponseWriter, r *http.Request) (*kv.Store, bool) {
	store, ok := s.storeFor(r)
	if !ok {
		internalError(w, r, errors.New("request has no device scope"))
		return nil, false
	}
	return store, true
}

func (s *server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, printer(w, r), http.StatusTooManyRequests, view.MsgRateLimited, "")
}

func (s *server) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	slog.Warn("csrf_rejected", "method", r.Method, "path", r.URL.Path)
	writeMessage(w, r, printer(w, r), http.StatusForbidden, view.MsgBadRequest, "")
}
