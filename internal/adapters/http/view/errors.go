package view

import (
	"errors"

	"toursights/internal/domain/quiz"
	"toursights/internal/domain/tracking"
	"toursights/internal/domain/user"
)

var errorMessages = []struct {
	err error
	key string
}{
	{user.ErrDuplicateUser, MsgRegisterDuplicate},
	{user.ErrInvalidCredentials, MsgLoginFailed},
	{user.ErrMissingCredentials, MsgMissingCredentials},
	{user.ErrMissingUsername, MsgMissingUsername},
	{user.ErrInvalidRole, MsgInvalidRole},
	{user.ErrUsernameTooLong, MsgInputTooLong},
	{user.ErrClassTooLong, MsgInputTooLong},
	{quiz.ErrUnknownStation, MsgUnknownStation},
	{tracking.ErrAlreadyRunning, MsgAlreadyRunning},
	{tracking.ErrNotRunning, MsgNotRunning},
	{tracking.ErrInvalidMode, MsgInvalidMode},
	{tracking.ErrModeMismatch, MsgModeMismatch},
	{tracking.ErrLocationUnavailable, MsgLocationUnavailable},
}

// ErrorMessageKey returns the message key for a domain error.
// POST: ok is false for errors that are not part of the domain taxonomy
func ErrorMessageKey(err error) (key string, ok bool) {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.key, true
		}
	}
	return "", false
}
