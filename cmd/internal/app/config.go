package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gatehouse/cmd/security/token"

	"github.com/joho/godotenv"
)

// hmacKeyMinBytes is measured in bytes, not runes, because the secret
// is consumed as raw HMAC-SHA256 key material.
const hmacKeyMinBytes = 32

// Config contains all runtime configuration loaded from environment variables.
//
// Required variables (DATABASE_URL, the session HMAC secret) abort
// startup with a descriptive error when missing; everything else has a
// safe default.
type Config struct {
	Environment string
	HTTPAddr    string
	Port        int
	LogLevel    string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// SessionKey is the HMAC-SHA256 key used to hash session tokens at
	// rest. Loaded from SESSION_HMAC_SECRET (JWT_SECRET accepted as a
	// legacy alias).
	SessionKey []byte
}

var validEnvironments = map[string]bool{
	"development": true,
	"production":  true,
	"test":        true,
}

// LoadConfig loads Config from environment variables, pulling in a .env
// file first outside production. Missing or malformed required
// variables fail startup.
func LoadConfig() (Config, error) {
	env := EnvString("NODE_ENV", "development")
	if env != "production" {
		// Best effort: a missing .env file is normal outside local dev.
		_ = godotenv.Load()
		env = EnvString("NODE_ENV", env)
	}
	if !validEnvironments[env] {
		return Config{}, fmt.Errorf("config: NODE_ENV must be one of development, production, test (got %q)", env)
	}

	port := 3000
	if raw := strings.TrimSpace(EnvString("PORT", "")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 65535 {
			return Config{}, fmt.Errorf("config: PORT must be an integer between 1 and 65535 (got %q)", raw)
		}
		port = n
	}

	dsn := EnvString("DATABASE_URL", "")
	if dsn == "" {
		return Config{}, errors.New("config: DATABASE_URL is required")
	}

	key, err := token.KeyFromEnv(hmacKeyMinBytes)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrSecretMissing):
			return Config{}, fmt.Errorf("config: %s is required (JWT_SECRET accepted as a legacy alias)", token.SecretEnvKey)
		case errors.Is(err, token.ErrSecretTooShort):
			return Config{}, fmt.Errorf("config: %s must be at least %d bytes", token.SecretEnvKey, hmacKeyMinBytes)
		default:
			return Config{}, err
		}
	}

	return Config{
		Environment: env,
		HTTPAddr:    fmt.Sprintf("%s:%d", EnvString("GATEHOUSE_HTTP_HOST", "0.0.0.0"), port),
		Port:        port,
		LogLevel:    EnvString("GATEHOUSE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("GATEHOUSE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("GATEHOUSE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("GATEHOUSE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("GATEHOUSE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("GATEHOUSE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: dsn,
		DBMaxConns:  EnvInt32("GATEHOUSE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("GATEHOUSE_DB_MIN_CONNS", 0),

		SessionKey: key,
	}, nil
}
