package repo

import "errors"

var (
	// ErrSessionClosed is returned when a load runs on a closed session.
	ErrSessionClosed = errors.New("session is closed")
	// ErrElementNotFound is returned when a stored element row does not exist.
	ErrElementNotFound = errors.New("element not found")
)
