package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Uniqueness checks compare the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeUsername performs case-insensitive canonicalization.
// Username defaults to email at registration, so the same rules apply.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
