package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"toursights/internal/domain/user"
)

// SetSessionInput carries input for a direct check-in without a registered user.
type SetSessionInput struct {
	Username string
	Role     string
	Class    string
}

// SetSessionDeps holds dependencies for SetSession.
type SetSessionDeps struct {
	Store KVStore
}

// ExecuteSetSession overwrites the device's session with the given identity.
// PRE: deps.Store is non-nil
// POST: ts_current_user holds the returned session
func ExecuteSetSession(ctx context.Context, input SetSessionInput, deps SetSessionDeps) (user.Session, error) {
	session := user.Session{
		Username: strings.TrimSpace(input.Username),
		Role:     input.Role,
		Class:    strings.TrimSpace(input.Class),
	}
	if err := session.Validate(); err != nil {
		return user.Session{}, err
	}

	deps.Store.Set(ctx, user.StorageKeyCurrentUser, session)
	slog.Info("auth_event", "event", "session_set", "username", session.Username, "role", session.Role)
	return session, nil
}
