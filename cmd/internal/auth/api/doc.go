// Package api wires the account and session services onto HTTP. It
// owns the cookie contract, the {success, error} response envelope,
// the authentication middleware with sliding refresh, audit logging,
// and login throttling.
package api
