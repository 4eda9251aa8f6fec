package session

import "time"

// State is a session's computed lifecycle state.
//
// It is derived at read time from (is_active, expires_at) so that the
// liveness invariant lives in exactly one place instead of being
// re-derived ad hoc by every caller.
type State string

const (
	// StateActive means the session authenticates requests.
	StateActive State = "active"
	// StateTerminated means the session was soft-deleted (logout,
	// terminate, terminate-all). Terminated wins over Expired.
	StateTerminated State = "terminated"
	// StateExpired means the session outlived expires_at without being
	// terminated.
	StateExpired State = "expired"
)

// Session mirrors a gatehouse.sessions row.
//
// TokenHash is the only credential material ever stored; the plain
// token exists in memory at issuance and refresh, and in the client's
// cookie.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UserAgent *string
	IPAddress *string
	IsActive  bool
	CreatedAt time.Time
}

// State computes the lifecycle state at the given instant.
func (s Session) State(now time.Time) State {
	if !s.IsActive {
		return StateTerminated
	}
	if !s.ExpiresAt.After(now) {
		return StateExpired
	}
	return StateActive
}

// Live reports whether the session authenticates requests at now.
func (s Session) Live(now time.Time) bool {
	return s.State(now) == StateActive
}
