package session

import (
	"context"
	"time"

	"gatehouse/cmd/identity"
)

// CreateInput describes a new session row. The token arrives pre-hashed;
// token generation and hashing policy belong to the Service.
type CreateInput struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UserAgent *string
	IPAddress *string
	Now       time.Time
}

// Store abstracts persistence for session state.
//
// All lookups that take a userID are ownership-scoped in the query
// itself so a caller can never observe another user's sessions.
type Store interface {
	// Create inserts a new session row.
	Create(ctx context.Context, in CreateInput) (Session, error)

	// GetWithUserByTokenHash loads the non-terminated session matching
	// the token hash, joined with its owner's projection, in one round
	// trip. Expiry is not filtered here; the caller decides how expired
	// rows surface. Misses return ErrSessionNotFound.
	GetWithUserByTokenHash(ctx context.Context, tokenHash string) (Session, identity.User, error)

	// Refresh atomically replaces the token hash and extends expiry on
	// a still-active session. Returns ErrSessionNotFound if the row was
	// terminated concurrently.
	Refresh(ctx context.Context, sessionID, newTokenHash string, newExpiresAt time.Time) error

	// ListActive returns the user's live sessions, newest first.
	ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error)

	// GetForUser loads one live session scoped to its owner.
	// Misses return ErrSessionNotFound.
	GetForUser(ctx context.Context, sessionID, userID string, now time.Time) (Session, error)

	// Terminate soft-deletes one live owned session. A session that is
	// already terminated, expired, missing, or owned by someone else
	// returns ErrSessionNotFound.
	Terminate(ctx context.Context, sessionID, userID string, now time.Time) error

	// TerminateAll soft-deletes every live session of the user and
	// returns the affected count.
	TerminateAll(ctx context.Context, userID string, now time.Time) (int64, error)

	// DeleteExpiredBefore hard-deletes sessions whose expiry predates
	// the cutoff and returns the deleted count.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
