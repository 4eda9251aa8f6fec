package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gatehouse/cmd/identity"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the session store
// (default "gatehouse").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("session: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("session: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "gatehouse",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return st, nil
}

// Create inserts a new session row and returns it with a fresh ULID.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Session{}, err
	}

	sessions := pgIdent(s.schema, "sessions")

	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+sessions+` (
			id, user_id, token_hash, expires_at,
			user_agent, ip_address, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, true, $7)`,
		id, in.UserID, in.TokenHash, in.ExpiresAt,
		in.UserAgent, in.IPAddress, now,
	)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:        id,
		UserID:    in.UserID,
		TokenHash: in.TokenHash,
		ExpiresAt: in.ExpiresAt,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// GetWithUserByTokenHash loads the non-terminated session and its owner
// in one joined round trip.
func (s *PostgresStore) GetWithUserByTokenHash(ctx context.Context, tokenHash string) (Session, identity.User, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, identity.User{}, err
	}

	sessions := pgIdent(s.schema, "sessions")
	users := pgIdent(s.schema, "users")

	var (
		row  Session
		user identity.User
		role string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT
			s.id, s.user_id, s.token_hash, s.expires_at,
			s.user_agent, s.ip_address, s.is_active, s.created_at,
			u.id, u.email, u.username, u.is_active, u.is_verified, u.role, u.created_at
		FROM `+sessions+` s
		JOIN `+users+` u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.is_active = true`,
		tokenHash,
	).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&row.ExpiresAt,
		&row.UserAgent,
		&row.IPAddress,
		&row.IsActive,
		&row.CreatedAt,
		&user.ID,
		&user.Email,
		&user.Username,
		&user.IsActive,
		&user.IsVerified,
		&role,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, identity.User{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, identity.User{}, err
	}

	user.Role = identity.Role(role)
	return row, user, nil
}

// Refresh atomically replaces the token hash and extends expiry on a
// still-active session.
func (s *PostgresStore) Refresh(ctx context.Context, sessionID, newTokenHash string, newExpiresAt time.Time) error {
	sessions := pgIdent(s.schema, "sessions")

	tag, err := s.pool.Exec(ctx, `
		UPDATE `+sessions+`
		   SET token_hash = $2,
		       expires_at = $3
		 WHERE id = $1 AND is_active = true`,
		sessionID, newTokenHash, newExpiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListActive returns the user's live sessions, newest first.
func (s *PostgresStore) ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessions := pgIdent(s.schema, "sessions")

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, token_hash, expires_at,
		       user_agent, ip_address, is_active, created_at
		FROM `+sessions+`
		WHERE user_id = $1 AND is_active = true AND expires_at > $2
		ORDER BY created_at DESC, id DESC`,
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Session, 0, 8)
	for rows.Next() {
		var row Session
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.TokenHash,
			&row.ExpiresAt,
			&row.UserAgent,
			&row.IPAddress,
			&row.IsActive,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForUser loads one live session scoped to its owner.
func (s *PostgresStore) GetForUser(ctx context.Context, sessionID, userID string, now time.Time) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	sessions := pgIdent(s.schema, "sessions")

	var row Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at,
		       user_agent, ip_address, is_active, created_at
		FROM `+sessions+`
		WHERE id = $1 AND user_id = $2 AND is_active = true AND expires_at > $3`,
		sessionID, userID, now,
	).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&row.ExpiresAt,
		&row.UserAgent,
		&row.IPAddress,
		&row.IsActive,
		&row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return row, nil
}

// Terminate soft-deletes one live owned session.
func (s *PostgresStore) Terminate(ctx context.Context, sessionID, userID string, now time.Time) error {
	sessions := pgIdent(s.schema, "sessions")

	tag, err := s.pool.Exec(ctx, `
		UPDATE `+sessions+`
		   SET is_active = false
		 WHERE id = $1 AND user_id = $2 AND is_active = true AND expires_at > $3`,
		sessionID, userID, now,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// TerminateAll soft-deletes every live session of the user.
func (s *PostgresStore) TerminateAll(ctx context.Context, userID string, now time.Time) (int64, error) {
	sessions := pgIdent(s.schema, "sessions")

	tag, err := s.pool.Exec(ctx, `
		UPDATE `+sessions+`
		   SET is_active = false
		 WHERE user_id = $1 AND is_active = true AND expires_at > $2`,
		userID, now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpiredBefore hard-deletes long-expired rows.
func (s *PostgresStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sessions := pgIdent(s.schema, "sessions")

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM `+sessions+`
		 WHERE expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// pgIdent safely quotes a schema-qualified identifier.
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}
