package identity

import (
	"errors"
	"testing"
	"time"
)

func TestRoleCan(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.Can(CapAdministerSessions) {
		t.Fatalf("expected ADMIN to hold %q", CapAdministerSessions)
	}
	if RoleUser.Can(CapAdministerSessions) {
		t.Fatalf("expected USER to lack %q", CapAdministerSessions)
	}
	if Role("MODERATOR").Can(CapAdministerSessions) {
		t.Fatalf("unknown roles must hold no capabilities")
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	for _, r := range []Role{RoleUser, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	for _, r := range []Role{"", "user", "admin", "ROOT"} {
		if r.Valid() {
			t.Fatalf("expected %q to be invalid", r)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	if got := NormalizeUsername("  NaViD "); got != "navid" {
		t.Fatalf("NormalizeUsername: got %q", got)
	}
}

func TestNewULID_LengthAndOrdering(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	a, err := NewULID(t0)
	if err != nil {
		t.Fatalf("ulid a: %v", err)
	}
	b, err := NewULID(t0.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("ulid b: %v", err)
	}

	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-char ULIDs, got %d and %d", len(a), len(b))
	}
	// Later timestamps sort after earlier ones lexicographically.
	if !(a < b) {
		t.Fatalf("expected %q < %q", a, b)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	conflict := ConflictError{Op: "identity.CreateUser", Field: "email"}
	if !IsConflict(conflict) {
		t.Fatalf("expected IsConflict")
	}
	if !errors.Is(conflict, ErrConflict) {
		t.Fatalf("expected errors.Is(ErrConflict)")
	}

	notFound := NotFoundError{Op: "identity.GetUserByID", Resource: "user"}
	if !IsNotFound(notFound) {
		t.Fatalf("expected IsNotFound")
	}

	invalid := OpError{Op: "identity.CreateUser", Kind: ErrInvalidInput, Msg: "email is required"}
	if !IsInvalidInput(invalid) {
		t.Fatalf("expected IsInvalidInput")
	}
	if IsConflict(invalid) {
		t.Fatalf("invalid input must not classify as conflict")
	}
}
