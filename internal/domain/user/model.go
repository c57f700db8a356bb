package user

import (
	"errors"
	"strings"
)

// Storage keys shared by every page of the tour.
const (
	StorageKeyUsers       = "ts_users"
	StorageKeyCurrentUser = "ts_current_user"
)

// Role constants
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleStudent, RoleTeacher}

// Domain errors
var (
	ErrDuplicateUser      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrMissingUsername    = errors.New("username cannot be empty")
	ErrInvalidRole        = errors.New("role must be one of: student, teacher")
	ErrUsernameTooLong    = errors.New("username cannot exceed 64 characters")
	ErrClassTooLong       = errors.New("class cannot exceed 32 characters")
)

// Max length constants for user-editable fields.
const (
	MaxUsernameLength = 64
	MaxClassLength    = 32
)

// User is a registered tour participant.
// The password is kept in plain text; the tour never handles real credentials.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Class    string `json:"class,omitempty"`
}

// Session is the identity persisted for the current device. It never carries the password.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Class    string `json:"class,omitempty"`
}

// Normalize trims the fields a visitor types by hand. The password is left untouched.
// POST: Username and Class carry no surrounding whitespace
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Class = strings.TrimSpace(u.Class)
}

// Validate checks if the User has valid data.
// PRE: Normalize has been called
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if u.Username == "" || u.Password == "" {
		return ErrMissingCredentials
	}
	if len(u.Username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if len(u.Class) > MaxClassLength {
		return ErrClassTooLong
	}
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Session returns the password-free identity of the user.
// INVARIANT: User fields are not mutated
func (u User) Session() Session {
	return Session{Username: u.Username, Role: u.Role, Class: u.Class}
}

// Matches reports whether both username and password are exact, case-sensitive matches.
// INVARIANT: User fields are not mutated
func (u User) Matches(username, password string) bool {
	return u.Username == username && u.Password == password
}

// Validate checks a directly-set session.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Username) == "" {
		return ErrMissingUsername
	}
	if len(s.Username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if len(s.Class) > MaxClassLength {
		return ErrClassTooLong
	}
	if !IsValidRole(s.Role) {
		return ErrInvalidRole
	}
	return nil
}

// IsZero reports whether the session identifies nobody.
func (s Session) IsZero() bool {
	return s.Username == ""
}

// Find returns the user with the given username, if present.
func Find(users []User, username string) (User, bool) {
	for _, u := range users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
