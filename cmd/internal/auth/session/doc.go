// Package session implements Gatehouse's session lifecycle: issuance of
// opaque bearer tokens, server-authoritative authentication with sliding
// expiry refresh, per-user session management (list, get, terminate one,
// terminate all), and expired-row sweeping.
//
// Tokens are high-entropy random strings returned to the client exactly
// once. Only a keyed hash is persisted; a database leak does not leak
// usable credentials.
package session
