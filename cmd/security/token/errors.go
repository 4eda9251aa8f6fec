package token

import "errors"

// Public, stable errors for callers.
var (
	ErrSecretMissing  = errors.New("session token secret missing")
	ErrSecretTooShort = errors.New("session token secret too short")
)
