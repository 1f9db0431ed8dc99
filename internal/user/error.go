package user

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidInput       = errors.New("name, email and password are required")

	// -- Session --
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)
