// Package token generates opaque bearer tokens and hashes them for
// at-rest storage. The plain token travels only in the session cookie;
// the database sees a 64-char hex HMAC-SHA256 (or SHA-256) digest.
package token
