package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
//   - The pgx pool is owned by the caller; this store must NOT close it.
//   - Schema/table identifiers are safely quoted to avoid SQL injection
//     via identifiers.
//   - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the user store (default
// "gatehouse"). The schema name is validated to be a legal PostgreSQL
// identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
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
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// CreateUser inserts a new user row.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if username == "" {
		username = email
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	role := in.Role
	if !role.Valid() {
		role = RoleUser
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, email, email_norm, username, username_norm,
		     password_hash, is_active, is_verified, role, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, true, false, $7, $8)`,
		userID,
		email,
		NormalizeEmail(email),
		username,
		NormalizeUsername(username),
		in.PasswordHash,
		string(role),
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{
		ID:         userID,
		Email:      email,
		Username:   username,
		IsActive:   true,
		IsVerified: false,
		Role:       role,
		CreatedAt:  now,
	}, nil
}

// FindByEmailOrUsername resolves the identifier against both identity
// columns with one query.
func (s *PostgresStore) FindByEmailOrUsername(ctx context.Context, identifier string) (UserAuth, error) {
	const op = "identity.FindByEmailOrUsername"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	norm := NormalizeEmail(identifier)
	if norm == "" {
		return UserAuth{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "identifier is required"}
	}

	users := pgIdent(s.schema, "users")

	var (
		out  UserAuth
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, username, password_hash, is_active, is_verified, role, created_at
		   FROM `+users+`
		  WHERE email_norm = $1 OR username_norm = $1`,
		norm,
	).Scan(
		&out.User.ID,
		&out.User.Email,
		&out.User.Username,
		&out.PasswordHash,
		&out.User.IsActive,
		&out.User.IsVerified,
		&role,
		&out.User.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return UserAuth{}, err
	}

	out.User.Role = Role(role)
	return out, nil
}

// GetUserByID loads a user's public projection.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(id) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing user id"}
	}

	users := pgIdent(s.schema, "users")

	var (
		out  User
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, username, is_active, is_verified, role, created_at
		   FROM `+users+`
		  WHERE id = $1`,
		id,
	).Scan(
		&out.ID,
		&out.Email,
		&out.Username,
		&out.IsActive,
		&out.IsVerified,
		&role,
		&out.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}

	out.Role = Role(role)
	return out, nil
}

// ---- helpers ----

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring
	// matching for ad hoc environments.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))

	switch c {
	case "uq_users_email_norm":
		return "email", true
	case "uq_users_username_norm":
		return "username", true
	default:
		switch {
		case strings.Contains(c, "email"):
			return "email", true
		case strings.Contains(c, "username"):
			return "username", true
		default:
			return "unique", true
		}
	}
}
