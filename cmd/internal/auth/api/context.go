package api

import (
	"context"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/session"
)

// Principal is the authenticated subject attached to request contexts
// by the session middleware.
type Principal struct {
	User    identity.User
	Session session.Session
}

type ctxKey int

const principalKey ctxKey = iota

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from a request
// context. ok is false on unauthenticated requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
