package web

import (
	"net/http"

	"toursights/internal/adapters/http/view"
	"toursights/internal/application/orchestrators"
	"toursights/internal/application/projections"
	"toursights/internal/domain/user"
)

// credentialsRequest is the body of register, login and direct session-set.
// Login ignores Role and Class.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Class    string `json:"class"`
}

type registerResponse struct {
	User     user.Session  `json:"user"`
	Message  string        `json:"message"`
	Elements view.Elements `json:"elements"`
}

type sessionResponse struct {
	Session  *user.Session `json:"session"`
	LoggedIn bool          `json:"loggedIn"`
	Message  string        `json:"message,omitempty"`
	Elements view.Elements `json:"elements"`
}

// readCredentials accepts an HTML form post or a JSON body.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	if isFormRequest(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return credentialsRequest{}, false
		}
		return credentialsRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
			Role:     r.PostFormValue("role"),
			Class:    r.PostFormValue("class"),
		}, true
	}
	var req credentialsRequest
	if err := strictDecode(w, r, &req); err != nil {
		return credentialsRequest{}, false
	}
	return req, true
}

// handleRegister appends a user to the device's registry. It does not log in.
func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}
	req, ok := readCredentials(w, r)
	if !ok {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementRegisterMessage)
		return
	}

	u, err := orchestrators.ExecuteRegisterUser(r.Context(), orchestrators.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Class:    req.Class,
	}, orchestrators.RegisterUserDeps{Store: store, Locks: s.deps.Locks})
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementRegisterMessage)
		return
	}
	s.deps.Metrics.UserRegistered()

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	msg := p.Sprintf(view.MsgRegisterSuccess)
	writeJSON(w, http.StatusCreated, registerResponse{
		User:     u.Session(),
		Message:  msg,
		Elements: view.Elements{view.ElementRegisterMessage: msg},
	})
}

// handleLogin checks credentials against the registry and stores the session.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}
	req, ok := readCredentials(w, r)
	if !ok {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementLoginMessage)
		return
	}

	session, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}, orchestrators.LoginDeps{Store: store})
	s.deps.Metrics.LoginAttempted(err == nil)
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementLoginMessage)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	msg := p.Sprintf(view.MsgLoginSuccess)
	writeJSON(w, http.StatusOK, sessionResponse{
		Session:  &session,
		LoggedIn: true,
		Message:  msg,
		Elements: view.Elements{
			view.ElementLoginMessage: msg,
			view.ElementCurrentUser:  view.CurrentUserText(p, session, true),
		},
	})
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}

	session, loggedIn := projections.QueryGetCurrentSession(r.Context(), projections.GetCurrentSessionDeps{Store: store})
	resp := sessionResponse{
		LoggedIn: loggedIn,
		Elements: view.Elements{view.ElementCurrentUser: view.CurrentUserText(p, session, loggedIn)},
	}
	if loggedIn {
		resp.Session = &session
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetSession records an identity directly, without a registry lookup.
func (s *server) handleSetSession(w http.ResponseWriter, r *http.Request) {
	p := printer(w, r)
	store, ok := s.withStore(w, r)
	if !ok {
		return
	}
	var req credentialsRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeMessage(w, r, p, http.StatusBadRequest, view.MsgBadRequest, view.ElementCurrentUser)
		return
	}

	session, err := orchestrators.ExecuteSetSession(r.Context(), orchestrators.SetSessionInput{
		Username: req.Username,
		Role:     req.Role,
		Class:    req.Class,
	}, orchestrators.SetSessionDeps{Store: store})
	if err != nil {
		writeDomainError(w, r, p, err, view.ElementCurrentUser)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Session:  &session,
		LoggedIn: true,
		Message:  p.Sprintf(view.MsgSessionSet, session.Username),
		Elements: view.Elements{view.ElementCurrentUser: view.CurrentUserText(p, session, true)},
	})
}
