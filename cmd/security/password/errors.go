package password

import "errors"

var (
	// ErrPasswordTooShort is returned when the password violates the
	// minimum-length policy.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordTooLong is returned when the password exceeds the
	// maximum-length policy (anti-DoS bound for the KDF).
	ErrPasswordTooLong = errors.New("password too long")

	// ErrInvalidHash is returned for malformed or unsupported encoded
	// hashes, including hashes with pathological cost parameters.
	ErrInvalidHash = errors.New("invalid argon2id hash")
)
