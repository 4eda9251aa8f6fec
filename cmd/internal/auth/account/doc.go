// Package account implements registration and credential verification
// for Gatehouse. It owns input validation policy and the
// anti-enumeration behavior of login; session issuance belongs to the
// session package and the HTTP layer.
package account
