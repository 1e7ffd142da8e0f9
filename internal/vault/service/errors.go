package service

import "errors"

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// during login, so responses don't reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrUsernameTaken      = errors.New("username_taken")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrCredentialNotFound = errors.New("credential_not_found")
)
