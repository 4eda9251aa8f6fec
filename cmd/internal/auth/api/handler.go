package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/account"
	"gatehouse/cmd/internal/auth/session"
	"gatehouse/cmd/security/password"
)

// Handler wires HTTP auth and session endpoints to the account and
// session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	// pool powers audit inserts and throttle queries; nil disables
	// both (handler tests run without a database).
	pool *pgxpool.Pool

	accounts *account.Service
	sessions *session.Service

	sessionTTL time.Duration
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, pool *pgxpool.Pool, accounts *account.Service, sessions *session.Service, sessionTTL time.Duration) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if accounts == nil {
		return nil, errors.New("api: nil account service")
	}
	if sessions == nil {
		return nil, errors.New("api: nil session service")
	}
	if sessionTTL <= 0 {
		return nil, errors.New("api: non-positive session ttl")
	}

	return &Handler{
		log:        log,
		cfg:        cfg,
		pool:       pool,
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}, nil
}

// Register wires the versioned API routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /api/v1/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)

	mux.HandleFunc("GET /api/v1/sessions", h.requireSession(h.handleListSessions))
	mux.HandleFunc("DELETE /api/v1/sessions", h.requireSession(h.handleTerminateAll))
	mux.HandleFunc("GET /api/v1/sessions/{sessionId}", h.requireSession(h.handleGetSession))
	mux.HandleFunc("DELETE /api/v1/sessions/{sessionId}", h.requireSession(h.handleTerminateSession))
	mux.HandleFunc("POST /api/v1/sessions/logout", h.requireSession(h.handleLogout))

	mux.HandleFunc("POST /api/v1/admin/sessions/cleanup",
		h.requireSession(h.requireCapability(identity.CapAdministerSessions, h.handleSessionCleanup)))

	mux.HandleFunc("GET /api/v1/health", h.handleHealth)
}

// ---- auth ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	u, err := h.accounts.Register(ctx, account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, account.ErrInvalidEmailFormat):
			writeError(w, http.StatusBadRequest, "Invalid email format")
		case errors.Is(err, password.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		case errors.Is(err, password.ErrPasswordTooLong):
			writeError(w, http.StatusBadRequest, "Password is too long")
		case errors.Is(err, account.ErrUserExists):
			writeError(w, http.StatusBadRequest, "User with this email already exists")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.auditRegisterSuccess(ctx, u.ID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())

	writeJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "User registered successfully",
		User:    toUserResponse(u),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())
	identifier := identity.NormalizeEmail(req.Email)

	// Throttling before the credential check to keep failed floods off
	// the expensive verify path.
	if blocked, retryAfter, err := h.checkLoginIPThrottle(ctx, ip, now); err != nil {
		h.log.Error("auth.login.throttle_ip.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	} else if blocked {
		h.auditLoginRateLimited(ctx, ip, ua, identifier)
		writeRateLimited(w, retryAfter)
		return
	}
	if blocked, retryAfter, err := h.checkLoginIdentifierThrottle(ctx, identifier, now); err != nil {
		h.log.Error("auth.login.throttle_identifier.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	} else if blocked {
		h.auditLoginRateLimited(ctx, ip, ua, identifier)
		writeRateLimited(w, retryAfter)
		return
	}

	u, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, account.ErrInvalidCredentials):
			h.auditLoginFailed(ctx, nil, ip, ua, identifier, "invalid_credentials")
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, account.ErrAccountDeactivated):
			h.auditLoginFailed(ctx, nil, ip, ua, identifier, "account_deactivated")
			writeError(w, http.StatusUnauthorized, "Account is deactivated")
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	issued, err := h.sessions.Issue(ctx, session.IssueInput{
		UserID:    u.ID,
		UserAgent: trimPtr(ua),
		IPAddress: ipPtr(ip),
		Now:       now,
	})
	if err != nil {
		h.log.Error("auth.login.issue_session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.auditLoginSuccess(ctx, u.ID, issued.Session.ID, ip, ua)
	h.setSessionCookie(w, issued.Token, h.sessionTTL)

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    toUserResponse(u),
		Session: sessionMeta{ExpiresAt: issued.Session.ExpiresAt},
	})
}

// ---- sessions ----

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	now := time.Now().UTC()

	rows, err := h.sessions.List(r.Context(), p.User.ID, now)
	if err != nil {
		h.log.Error("sessions.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]sessionInfo, 0, len(rows))
	for _, s := range rows {
		out = append(out, toSessionInfo(s, p.Session.ID))
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Success: true, Sessions: out})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	sessionID := strings.TrimSpace(r.PathValue("sessionId"))
	now := time.Now().UTC()

	s, err := h.sessions.Get(r.Context(), p.User.ID, sessionID, now)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.log.Error("sessions.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{Success: true, Session: toSessionInfo(s, p.Session.ID)})
}

func (h *Handler) handleTerminateSession(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	sessionID := strings.TrimSpace(r.PathValue("sessionId"))
	now := time.Now().UTC()

	// Guardrail: the current session goes through logout so the cookie
	// is cleared with it.
	if sessionID == p.Session.ID {
		writeError(w, http.StatusBadRequest, "Cannot terminate the current session. Use logout instead.")
		return
	}

	if err := h.sessions.Terminate(r.Context(), p.User.ID, sessionID, now); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.log.Error("sessions.terminate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.auditSessionTerminated(r.Context(), p.User.ID, sessionID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Session terminated successfully"})
}

func (h *Handler) handleTerminateAll(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	now := time.Now().UTC()

	count, err := h.sessions.TerminateAll(r.Context(), p.User.ID, now)
	if err != nil {
		h.log.Error("sessions.terminate_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.auditSessionsTerminatedAll(r.Context(), p.User.ID, count, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	h.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, terminateAllResponse{
		Success:         true,
		Message:         "All sessions terminated successfully",
		TerminatedCount: count,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	now := time.Now().UTC()

	if err := h.sessions.Logout(r.Context(), p.User.ID, p.Session.ID, now); err != nil {
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.auditLogout(r.Context(), p.User.ID, p.Session.ID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	h.clearSessionCookie(w)

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// ---- admin ----

func (h *Handler) handleSessionCleanup(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	now := time.Now().UTC()

	deleted, err := h.sessions.SweepExpired(r.Context(), now)
	if err != nil {
		h.log.Error("sessions.cleanup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.auditSessionsSwept(r.Context(), p.User.ID, deleted, clientIP(r, h.cfg.TrustProxy), r.UserAgent())

	writeJSON(w, http.StatusOK, cleanupResponse{Success: true, DeletedCount: deleted})
}

// ---- health ----

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: h.cfg.Environment,
	})
}
