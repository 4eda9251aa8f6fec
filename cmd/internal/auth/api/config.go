package api

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the opaque bearer token.
const SessionCookieName = "session_token"

// Config controls auth API behavior and security defaults.
type Config struct {
	// Environment is the deployment environment (development,
	// production, test). Production turns on the Secure cookie flag.
	Environment string

	// Schema is the Postgres schema holding the audit log.
	Schema string

	TrustProxy   bool
	MaxBodyBytes int64

	CookiePath string

	// Login throttling over the audit log.
	LoginIPMax         int
	LoginIPWindow      time.Duration
	LoginAccountMax    int
	LoginAccountWindow time.Duration
}

// CookieSecure reports whether session cookies must carry the Secure
// flag.
func (c Config) CookieSecure() bool {
	return c.Environment == "production"
}

// LoadConfigFromEnv loads auth API config from environment variables
// with safe defaults. environment comes from the app-level NODE_ENV
// validation, not from here.
func LoadConfigFromEnv(environment string) Config {
	cfg := Config{
		Environment:        strings.TrimSpace(environment),
		Schema:             "gatehouse",
		TrustProxy:         envBool("GATEHOUSE_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:       envInt64("GATEHOUSE_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		CookiePath:         "/",
		LoginIPMax:         envInt("GATEHOUSE_AUTH_LOGIN_IP_MAX", 20),
		LoginIPWindow:      envDuration("GATEHOUSE_AUTH_LOGIN_IP_WINDOW", 5*time.Minute),
		LoginAccountMax:    envInt("GATEHOUSE_AUTH_LOGIN_ACCOUNT_MAX", 5),
		LoginAccountWindow: envDuration("GATEHOUSE_AUTH_LOGIN_ACCOUNT_WINDOW", 15*time.Minute),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.LoginIPMax <= 0 {
		cfg.LoginIPMax = 20
	}
	if cfg.LoginAccountMax <= 0 {
		cfg.LoginAccountMax = 5
	}

	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
