package api

import (
	"context"
	"encoding/json"
	"net"
	"strings"
)

func (h *Handler) auditRegisterSuccess(ctx context.Context, userID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.register.success", &userID, nil, ip, ua, nil)
}

func (h *Handler) auditLoginFailed(ctx context.Context, userID *string, ip net.IP, ua, identifier, reason string) {
	h.insertAudit(ctx, "auth.login.failed", userID, nil, ip, ua, map[string]any{
		"identifier": identifier,
		"reason":     reason,
	})
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID, sessionID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.login.success", &userID, &sessionID, ip, ua, nil)
}

func (h *Handler) auditLoginRateLimited(ctx context.Context, ip net.IP, ua, identifier string) {
	h.insertAudit(ctx, "auth.login.rate_limited", nil, nil, ip, ua, map[string]any{
		"identifier": identifier,
	})
}

func (h *Handler) auditLogout(ctx context.Context, userID, sessionID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.logout", &userID, &sessionID, ip, ua, nil)
}

func (h *Handler) auditSessionTerminated(ctx context.Context, userID, sessionID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "sessions.terminate", &userID, &sessionID, ip, ua, nil)
}

func (h *Handler) auditSessionsTerminatedAll(ctx context.Context, userID string, count int64, ip net.IP, ua string) {
	h.insertAudit(ctx, "sessions.terminate_all", &userID, nil, ip, ua, map[string]any{
		"terminated_count": count,
	})
}

func (h *Handler) auditSessionsSwept(ctx context.Context, userID string, deleted int64, ip net.IP, ua string) {
	h.insertAudit(ctx, "sessions.cleanup", &userID, nil, ip, ua, map[string]any{
		"deleted_count": deleted,
	})
}

func (h *Handler) insertAudit(ctx context.Context, action string, userID, sessionID *string, ip net.IP, ua string, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	auditLog := pgIdent(h.cfg.Schema, "audit_log")

	_, err := h.pool.Exec(ctx, `
		INSERT INTO `+auditLog+` (
			user_id, session_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, now(), $4, $5, $6::jsonb)
	`, userID, sessionID, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
