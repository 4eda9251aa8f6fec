package account

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/security/password"
)

// emailRe is a deliberately loose shape check: something before the @,
// a domain, and a dot-separated TLD. Real validation happens when mail
// is actually delivered.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements account registration and credential verification.
type Service struct {
	users identity.Store
	pw    password.Config

	// dummyHash absorbs a full Argon2id verify when the login
	// identifier resolves to nothing, so response timing does not
	// reveal whether the account exists.
	dummyHash string
}

// NewService constructs an account Service.
func NewService(users identity.Store, pw password.Config) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("account: nil user store")
	}

	s := &Service{users: users, pw: pw}

	dummy, err := pw.Hash("dummy-password-for-timing-only")
	if err != nil {
		return nil, fmt.Errorf("account: dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Now      time.Time
}

// Register validates input, hashes the password, and creates the user.
//
// Checks run in a fixed order and the first failure wins: presence,
// email shape, password policy, uniqueness. No session is created;
// the caller logs in separately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (identity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return identity.User{}, ErrMissingFields
	}
	if !emailRe.MatchString(email) {
		return identity.User{}, ErrInvalidEmailFormat
	}
	if err := s.pw.Validate(in.Password); err != nil {
		return identity.User{}, err
	}

	hash, err := s.pw.Hash(in.Password)
	if err != nil {
		return identity.User{}, err
	}

	u, err := s.users.CreateUser(ctx, identity.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		Role:         identity.RoleUser,
		Now:          in.Now,
	})
	if err != nil {
		if identity.IsConflict(err) {
			return identity.User{}, ErrUserExists
		}
		return identity.User{}, err
	}

	return u, nil
}

// Login verifies credentials and returns the account's projection.
//
// Unknown identifier and wrong password produce the identical
// ErrInvalidCredentials; a dummy verify runs on the unknown-identifier
// path so both take comparable time. Deactivated accounts are reported
// after the identifier resolves but before password verification, per
// the account state taking precedence over the credential.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (identity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || plainPassword == "" {
		return identity.User{}, ErrMissingFields
	}

	auth, err := s.users.FindByEmailOrUsername(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			_, _ = s.pw.Verify(s.dummyHash, plainPassword)
			return identity.User{}, ErrInvalidCredentials
		}
		return identity.User{}, err
	}

	if !auth.User.IsActive {
		return identity.User{}, ErrAccountDeactivated
	}

	ok, err := s.pw.Verify(auth.PasswordHash, plainPassword)
	if err != nil {
		// A malformed stored hash is a server defect, not a credential
		// failure; do not mask it as a 401.
		return identity.User{}, err
	}
	if !ok {
		return identity.User{}, ErrInvalidCredentials
	}

	return auth.User, nil
}
