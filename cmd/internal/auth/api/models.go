package api

import (
	"time"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/internal/auth/session"
)

// Request/response shapes use camelCase keys, matching the public API
// contract consumed by the dashboards.

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type sessionMeta struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

type registerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Session sessionMeta  `json:"session"`
}

type sessionInfo struct {
	ID               string    `json:"id"`
	ExpiresAt        time.Time `json:"expiresAt"`
	UserAgent        *string   `json:"userAgent"`
	IPAddress        *string   `json:"ipAddress"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	IsCurrentSession bool      `json:"isCurrentSession"`
}

type listSessionsResponse struct {
	Success  bool          `json:"success"`
	Sessions []sessionInfo `json:"sessions"`
}

type getSessionResponse struct {
	Success bool        `json:"success"`
	Session sessionInfo `json:"session"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type terminateAllResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	TerminatedCount int64  `json:"terminatedCount"`
}

type cleanupResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt,
	}
}

func toSessionInfo(s session.Session, currentID string) sessionInfo {
	return sessionInfo{
		ID:               s.ID,
		ExpiresAt:        s.ExpiresAt,
		UserAgent:        s.UserAgent,
		IPAddress:        s.IPAddress,
		IsActive:         s.IsActive,
		CreatedAt:        s.CreatedAt,
		IsCurrentSession: s.ID == currentID,
	}
}
