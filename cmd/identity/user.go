package identity

import "time"

// User is Gatehouse's canonical security principal.
// The password hash lives on UserAuth only and must never be serialized
// outward.
type User struct {
	ID         string
	Email      string
	Username   string
	IsActive   bool
	IsVerified bool
	Role       Role
	CreatedAt  time.Time
}

// UserAuth carries the user plus the stored credential for the
// verification path. Keep it off every response type.
type UserAuth struct {
	User         User
	PasswordHash string
}

// Role is a coarse-grained permission tier.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Capability is a named permission checked by middleware and services.
// Capabilities exist so that authorization is an explicit grant check,
// not a string comparison against role names scattered through handlers.
type Capability string

const (
	// CapAdministerSessions allows maintenance operations over other
	// users' session records (e.g. manual expired-session sweeps).
	CapAdministerSessions Capability = "sessions:administer"
)

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin:
		// Admin currently holds every capability. New roles must be
		// added to this switch with an explicit grant set.
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// Valid reports whether the role is a known tier.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
