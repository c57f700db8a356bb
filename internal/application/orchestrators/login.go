package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"toursights/internal/domain/user"
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Store KVStore
}

// ExecuteLogin matches credentials against the registry and persists the session.
// PRE: deps.Store is non-nil
// POST: on success ts_current_user holds the returned session
// INVARIANT: the registry is not mutated
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (user.Session, error) {
	username := strings.TrimSpace(input.Username)

	for _, u := range loadUsers(ctx, deps.Store) {
		if !u.Matches(username, input.Password) {
			continue
		}
		session := u.Session()
		deps.Store.Set(ctx, user.StorageKeyCurrentUser, session)
		slog.Info("auth_event", "event", "login_success", "username", username, "role", session.Role)
		return session, nil
	}

	slog.Info("auth_event", "event", "login_failed", "username", username)
	return user.Session{}, user.ErrInvalidCredentials
}
