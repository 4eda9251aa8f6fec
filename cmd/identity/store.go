package identity

import (
	"context"
	"time"
)

// CreateUserInput describes a user registration request. The password
// arrives pre-hashed; hashing policy belongs to the caller (account
// service), persistence belongs here.
type CreateUserInput struct {
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Now          time.Time
}

// Store is the user persistence boundary.
type Store interface {
	// CreateUser inserts a new user row. A uniqueness collision on
	// email or username surfaces as a ConflictError.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// FindByEmailOrUsername resolves the login identifier against both
	// the email and username columns (normalized comparison) and
	// returns the user with its stored credential. Missing users
	// surface as NotFoundError.
	FindByEmailOrUsername(ctx context.Context, identifier string) (UserAuth, error)

	// GetUserByID loads a user's public projection.
	GetUserByID(ctx context.Context, id string) (User, error)
}
