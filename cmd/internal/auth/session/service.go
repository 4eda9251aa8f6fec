package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/security/token"
)

// Service implements the high-level session operations for Gatehouse.
//
// It issues opaque bearer sessions, authenticates tokens with a sliding
// expiry refresh, and supports per-session and per-user termination.
type Service struct {
	cfg   Config
	key   []byte
	store Store
}

// NewService constructs a Service. key is the HMAC key applied to
// tokens at rest; it must be non-empty.
func NewService(cfg Config, key []byte, store Store) (*Service, error) {
	if cfg.TTL <= 0 || cfg.RefreshWindow <= 0 || cfg.RefreshWindow >= cfg.TTL {
		return nil, ErrConfig
	}
	if cfg.TokenBytes < 32 || cfg.TokenBytes > 64 {
		return nil, ErrConfig
	}
	if len(key) == 0 {
		return nil, ErrConfig
	}
	if store == nil {
		return nil, ErrConfig
	}
	return &Service{cfg: cfg, key: key, store: store}, nil
}

// IssueInput describes a session issuance request (successful login).
type IssueInput struct {
	UserID    string
	UserAgent *string
	IPAddress *string
	Now       time.Time
}

// Issued is the result of issuing a session. Token is the plain bearer
// secret; it is returned exactly once and never persisted.
type Issued struct {
	Session Session
	Token   string
}

// Issue creates a new session with a fresh opaque token expiring at
// now + TTL.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Issued, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	plain, err := token.NewSessionToken(s.cfg.TokenBytes)
	if err != nil {
		return Issued{}, err
	}

	row, err := s.store.Create(ctx, CreateInput{
		UserID:    in.UserID,
		TokenHash: token.HashSessionTokenHex(plain, s.key),
		ExpiresAt: now.Add(s.cfg.TTL),
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		Now:       now,
	})
	if err != nil {
		return Issued{}, err
	}

	return Issued{Session: row, Token: plain}, nil
}

// Authenticated is the result of a successful token authentication.
// RefreshedToken is non-empty only when the sliding refresh fired, in
// which case the caller must hand the new token back to the client and
// the presented token is dead.
type Authenticated struct {
	Session        Session
	User           identity.User
	RefreshedToken string
}

// Authenticate resolves a plain bearer token to its session and owner.
//
// When the session's remaining lifetime has dropped below the refresh
// window, the token is rotated and expiry extended to now + TTL in a
// single row update. Concurrent requests racing the rotation may lose;
// the loser fails authentication on its next request. Accepted given
// the slack of the window.
func (s *Service) Authenticate(ctx context.Context, plain string, now time.Time) (Authenticated, error) {
	plain = strings.TrimSpace(plain)
	// Sanity bounds to avoid hashing pathological inputs.
	if plain == "" || len(plain) > 4096 {
		return Authenticated{}, ErrSessionNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	row, owner, err := s.store.GetWithUserByTokenHash(ctx, token.HashSessionTokenHex(plain, s.key))
	if err != nil {
		return Authenticated{}, err
	}

	switch row.State(now) {
	case StateTerminated:
		return Authenticated{}, ErrSessionNotFound
	case StateExpired:
		return Authenticated{}, ErrSessionExpired
	}

	if !owner.IsActive {
		return Authenticated{}, ErrOwnerDeactivated
	}

	out := Authenticated{Session: row, User: owner}

	if row.ExpiresAt.Sub(now) < s.cfg.RefreshWindow {
		newPlain, err := token.NewSessionToken(s.cfg.TokenBytes)
		if err != nil {
			return Authenticated{}, err
		}
		newHash := token.HashSessionTokenHex(newPlain, s.key)
		newExp := now.Add(s.cfg.TTL)

		if err := s.store.Refresh(ctx, row.ID, newHash, newExp); err != nil {
			// Lost a race with terminate: the session is gone.
			if errors.Is(err, ErrSessionNotFound) {
				return Authenticated{}, ErrSessionNotFound
			}
			return Authenticated{}, err
		}

		out.Session.TokenHash = newHash
		out.Session.ExpiresAt = newExp
		out.RefreshedToken = newPlain
	}

	return out, nil
}

// List returns the user's live sessions, newest first.
func (s *Service) List(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	return s.store.ListActive(ctx, userID, now)
}

// Get loads one live session scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, sessionID string, now time.Time) (Session, error) {
	return s.store.GetForUser(ctx, sessionID, userID, now)
}

// Terminate soft-deletes one live owned session. Terminating a session
// that is already gone, expired, or foreign yields the same
// ErrSessionNotFound so existence never leaks across users.
func (s *Service) Terminate(ctx context.Context, userID, sessionID string, now time.Time) error {
	return s.store.Terminate(ctx, sessionID, userID, now)
}

// TerminateAll soft-deletes every live session of the user, the current
// one included, and returns the count. Cookie clearing is the HTTP
// layer's responsibility.
func (s *Service) TerminateAll(ctx context.Context, userID string, now time.Time) (int64, error) {
	return s.store.TerminateAll(ctx, userID, now)
}

// Logout terminates exactly the current session. Logging out of a
// session that already vanished is not an error.
func (s *Service) Logout(ctx context.Context, userID, currentSessionID string, now time.Time) error {
	err := s.store.Terminate(ctx, currentSessionID, userID, now)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// SweepExpired hard-deletes sessions that expired more than the
// retention window ago and returns the deleted count.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return s.store.DeleteExpiredBefore(ctx, now.Add(-s.cfg.SweepRetention))
}

// SweepInterval exposes the configured sweep cadence for the background
// worker.
func (s *Service) SweepInterval() time.Duration {
	return s.cfg.SweepInterval
}
