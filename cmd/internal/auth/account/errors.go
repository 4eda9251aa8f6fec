package account

import "errors"

var (
	// ErrMissingFields is returned when email or password is absent.
	ErrMissingFields = errors.New("email and password are required")

	// ErrInvalidEmailFormat is returned when the email fails the shape
	// check.
	ErrInvalidEmailFormat = errors.New("invalid email format")

	// ErrUserExists is returned when registration collides with an
	// existing email or username.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for both unknown identifier and
	// wrong password. Callers must keep the two indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDeactivated is returned when the credentials resolve to
	// a deactivated account.
	ErrAccountDeactivated = errors.New("account deactivated")
)
