package api

import (
	"errors"
	"net/http"
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/session"
)

// requireSession authenticates the request from the session cookie,
// applies the sliding refresh, and attaches the principal to the
// request context.
//
// Refresh is transparent to clients: when the session's remaining
// lifetime drops below the window, a rotated token is issued and the
// cookie replaced in the same response. Clients never handle tokens
// directly.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := sessionTokenFromCookie(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		now := time.Now().UTC()
		auth, err := h.sessions.Authenticate(r.Context(), token, now)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired):
				writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			case errors.Is(err, session.ErrOwnerDeactivated):
				writeError(w, http.StatusUnauthorized, "Account is deactivated")
			default:
				h.log.Error("auth.middleware.fail", "err", err)
				writeError(w, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		if auth.RefreshedToken != "" {
			h.setSessionCookie(w, auth.RefreshedToken, h.sessionTTL)
		}

		ctx := withPrincipal(r.Context(), Principal{
			User:    auth.User,
			Session: auth.Session,
		})
		next(w, r.WithContext(ctx))
	}
}

// requireCapability gates a handler on a role capability. Must run
// inside requireSession.
func (h *Handler) requireCapability(cap identity.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.User.Role.Can(cap) {
			writeError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		next(w, r)
	}
}
