package auth

import "errors"

// Terminal outcomes of the authentication flows. Handlers translate these to
// HTTP statuses; nothing here is retried.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password
	// so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserInactive is returned before any password check so inactive
	// accounts leak nothing about credential validity.
	ErrUserInactive = errors.New("user inactive")

	// ErrConflict covers duplicate usernames and any other failed insert.
	ErrConflict = errors.New("username already exists or insert failed")
)
