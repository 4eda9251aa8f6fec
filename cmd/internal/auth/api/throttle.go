package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Login throttling counts recent auth.login.failed audit rows. Using
// the audit log as the source keeps the throttle state durable across
// restarts with zero extra bookkeeping.

func (h *Handler) checkLoginIPThrottle(ctx context.Context, ip net.IP, now time.Time) (bool, time.Duration, error) {
	if ip == nil || h.cfg.LoginIPMax <= 0 {
		return false, 0, nil
	}
	cut := now.Add(-h.cfg.LoginIPWindow)
	count, err := h.countLoginFailuresByIP(ctx, ip, cut)
	if err != nil {
		return false, 0, err
	}
	if count >= h.cfg.LoginIPMax {
		return true, h.cfg.LoginIPWindow, nil
	}
	return false, 0, nil
}

func (h *Handler) checkLoginIdentifierThrottle(ctx context.Context, identifier string, now time.Time) (bool, time.Duration, error) {
	if identifier == "" || h.cfg.LoginAccountMax <= 0 {
		return false, 0, nil
	}
	cut := now.Add(-h.cfg.LoginAccountWindow)
	count, err := h.countLoginFailuresByIdentifier(ctx, identifier, cut)
	if err != nil {
		return false, 0, err
	}
	if count >= h.cfg.LoginAccountMax {
		return true, h.cfg.LoginAccountWindow, nil
	}
	return false, 0, nil
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}
	writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
}

// ---- audit queries ----

func (h *Handler) countLoginFailuresByIP(ctx context.Context, ip net.IP, since time.Time) (int, error) {
	if h.pool == nil || ip == nil {
		return 0, nil
	}
	auditLog := pgIdent(h.cfg.Schema, "audit_log")
	var n int
	err := h.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM `+auditLog+`
		WHERE action = 'auth.login.failed'
		  AND ip = $1
		  AND created_at >= $2
	`, ip.String(), since).Scan(&n)
	return n, err
}

func (h *Handler) countLoginFailuresByIdentifier(ctx context.Context, identifier string, since time.Time) (int, error) {
	if h.pool == nil || identifier == "" {
		return 0, nil
	}
	auditLog := pgIdent(h.cfg.Schema, "audit_log")
	var n int
	err := h.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM `+auditLog+`
		WHERE action = 'auth.login.failed'
		  AND meta->>'identifier' = $1
		  AND created_at >= $2
	`, identifier, since).Scan(&n)
	return n, err
}

// pgIdent safely quotes a schema-qualified identifier.
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}
