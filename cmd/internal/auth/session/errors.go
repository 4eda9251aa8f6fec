package session

import "errors"

var (
	// ErrSessionNotFound is returned when a token or id does not match
	// any live session. Callers must not distinguish "never existed",
	// "terminated", and "not yours"; they all surface as this error.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session outlived its
	// expires_at without refresh.
	ErrSessionExpired = errors.New("session expired")

	// ErrOwnerDeactivated is returned when the session is live but its
	// owning account has been deactivated.
	ErrOwnerDeactivated = errors.New("account deactivated")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)
