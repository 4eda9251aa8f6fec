package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
)

const (
	// SecretEnvKey is the env var name for the session-token HMAC secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "SESSION_HMAC_SECRET"

	// LegacySecretEnvKey is accepted as a fallback for deployments that
	// still configure the secret under its historical name.
	// #nosec G101 -- not a credential; it's an environment variable name.
	LegacySecretEnvKey = "JWT_SECRET"
)

// NewSessionToken returns a cryptographically random bearer token,
// hex-encoded (2*nBytes chars). The plain token is shown to the client
// exactly once; the server stores only a hash (see HashSessionTokenHex).
func NewSessionToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of s using key.
func HashHMACSHA256Hex(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}

// HashSessionTokenHex hashes a bearer token for server-side storage.
// With a non-empty key it uses HMAC-SHA256; otherwise plain SHA-256.
// Output is always a 64-char hex string.
func HashSessionTokenHex(tok string, key []byte) string {
	if len(key) == 0 {
		return HashSHA256Hex(tok)
	}
	return HashHMACSHA256Hex(tok, key)
}

// KeyFromEnv returns the configured HMAC key bytes (trimmed), enforcing a
// minimum byte length. SESSION_HMAC_SECRET wins over JWT_SECRET.
// If neither is set -> ErrSecretMissing. If too short -> ErrSecretTooShort.
func KeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(LegacySecretEnvKey))
	}
	if raw == "" {
		return nil, ErrSecretMissing
	}

	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}
