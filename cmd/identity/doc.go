// Package identity implements Gatehouse's user foundation: the user
// model, role/capability checks, normalization rules, typed errors,
// and the Postgres-backed user store.
//
// This package is intentionally dependency-light and security-first.
package identity
