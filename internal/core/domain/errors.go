package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrTitleRequired    = errors.New("title is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUserExists       = errors.New("user is already registered")
	ErrIncorrectUser    = errors.New("incorrect username")
	ErrIncorrectPass    = errors.New("incorrect password")

	// ErrConnClosed is returned when a request-scoped connection is used after release.
	ErrConnClosed = errors.New("connection not available")
)
