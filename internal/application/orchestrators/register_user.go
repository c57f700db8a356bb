package orchestrators

import (
	"context"
	"log/slog"

	"toursights/internal/adapters/storage/kv"
	"toursights/internal/domain/user"
)

// RegisterUserInput carries input for the register user orchestrator.
type RegisterUserInput struct {
	Username string
	Password string
	Role     string
	Class    string
}

// RegisterUserDeps holds dependencies for RegisterUser.
type RegisterUserDeps struct {
	Store KVStore
	Locks *ScopeLocks
}

// ExecuteRegisterUser appends a new user to the device's registry.
// Registration does not log the user in.
// PRE: deps.Store and deps.Locks are non-nil
// POST: ts_users holds the new user after every previously registered one
// INVARIANT: usernames stay unique (case-sensitive exact match)
func ExecuteRegisterUser(ctx context.Context, input RegisterUserInput, deps RegisterUserDeps) (user.User, error) {
	u := user.User{
		Username: input.Username,
		Password: input.Password,
		Role:     input.Role,
		Class:    input.Class,
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		slog.Info("auth_event", "event", "register_rejected", "username", u.Username, "reason", err.Error())
		return user.User{}, err
	}

	unlock := deps.Locks.Lock(deps.Store.Scope())
	defer unlock()

	users := loadUsers(ctx, deps.Store)
	if _, taken := user.Find(users, u.Username); taken {
		slog.Info("auth_event", "event", "register_rejected", "username", u.Username, "reason", "duplicate")
		return user.User{}, user.ErrDuplicateUser
	}

	users = append(users, u)
	deps.Store.Set(ctx, user.StorageKeyUsers, users)

	slog.Info("auth_event", "event", "user_registered", "username", u.Username, "role", u.Role, "total_users", len(users))
	return u, nil
}

// loadUsers returns the stored registry, or an empty list when absent or malformed.
func loadUsers(ctx context.Context, store KVStore) []user.User {
	return kv.Get(ctx, store, user.StorageKeyUsers, []user.User(nil))
}
