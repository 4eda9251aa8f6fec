// Package password implements Argon2id password hashing with a
// PHC-encoded hash format, an env-tunable cost configuration, and the
// account password policy (minimum length, anti-DoS verify bounds).
package password
