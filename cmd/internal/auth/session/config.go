package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// It controls session lifetime, the sliding-refresh window, token
// entropy size, and the background sweep cadence. Explicit and
// environment-driven so production deployments can tune security
// parameters without code changes.
type Config struct {
	// TTL is the absolute session lifetime set at issuance and at each
	// sliding refresh.
	TTL time.Duration

	// RefreshWindow is the remaining-lifetime threshold below which an
	// authenticated request rotates the token and extends expiry.
	RefreshWindow time.Duration

	// TokenBytes is the number of random bytes used to generate opaque
	// session tokens (hex-encoded to twice as many characters).
	TokenBytes int

	// SweepInterval is the cadence of the background expired-session
	// sweeper.
	SweepInterval time.Duration

	// SweepRetention keeps expired rows around for forensics before the
	// sweeper deletes them.
	SweepRetention time.Duration
}

// DefaultConfig returns a secure default configuration.
func DefaultConfig() Config {
	return Config{
		TTL:            24 * time.Hour,
		RefreshWindow:  1 * time.Hour,
		TokenBytes:     32,
		SweepInterval:  1 * time.Hour,
		SweepRetention: 24 * time.Hour,
	}
}

// LoadConfigFromEnv loads session configuration from environment
// variables, starting from DefaultConfig.
//
// Optional (durations must be valid Go duration strings):
//   - GATEHOUSE_SESSION_TTL
//   - GATEHOUSE_SESSION_REFRESH_WINDOW
//   - GATEHOUSE_SESSION_TOKEN_BYTES (32..64)
//   - GATEHOUSE_SESSION_SWEEP_INTERVAL
//   - GATEHOUSE_SESSION_SWEEP_RETENTION
//
// Returns ErrConfig if a set value is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("GATEHOUSE_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("GATEHOUSE_SESSION_REFRESH_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshWindow = d
	}

	if v := os.Getenv("GATEHOUSE_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	if v := os.Getenv("GATEHOUSE_SESSION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.SweepInterval = d
	}

	if v := os.Getenv("GATEHOUSE_SESSION_SWEEP_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.SweepRetention = d
	}

	// Invariant: refresh must trigger strictly before expiry.
	if cfg.RefreshWindow >= cfg.TTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
