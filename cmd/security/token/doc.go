// Package token implements Arc's access-token protocol: a JWT-compatible
// compact token signed with an Ed25519 key-pair, header-carrying alg=EdDSA
// and kid=<keypair ulid>.
//
// Signing and full verification use github.com/golang-jwt/jwt/v5.
// Key-id extraction is header-only and deliberately does not touch
// golang-jwt's verifying path: callers need the kid to look up the
// verifying key *before* verification can happen at all.
package token
