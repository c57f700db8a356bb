package projections

import (
	"context"

	"toursights/internal/domain/user"
)

// GetCurrentSessionDeps holds dependencies for the current session projection.
type GetCurrentSessionDeps struct {
	Store KVReader
}

// QueryGetCurrentSession returns the device's persisted session, if any.
// A malformed or nameless stored value counts as no session.
// INVARIANT: Store state is not mutated
func QueryGetCurrentSession(ctx context.Context, deps GetCurrentSessionDeps) (user.Session, bool) {
	var s user.Session
	if !deps.Store.Lookup(ctx, user.StorageKeyCurrentUser, &s) || s.IsZero() {
		return user.Session{}, false
	}
	return s, true
}
