package identity

import (
	"arc/cmd/security/password"
)

// PasswordHash is an Argon2id PHC-encoded hash of a Password.
//
// Hashing and verification are delegated to cmd/security/password, which
// owns the Argon2id parameters, anti-DoS bounds on Verify, and the
// constant-time comparison. identity only adapts that engine to the
// Password/PasswordHash value objects the domain speaks in.
type PasswordHash struct {
	encoded string
}

// HashPassword derives a PasswordHash from a validated Password using a
// fresh random salt. Salt generation happens inside the engine, sourced
// from crypto/rand.
func HashPassword(pw Password) (PasswordHash, error) {
	cfg := engineConfig()
	enc, err := cfg.Hash(pw.String())
	if err != nil {
		return PasswordHash{}, OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: err.Error()}
	}
	return PasswordHash{encoded: enc}, nil
}

// RestorePasswordHash wraps an already-encoded PHC string loaded from storage.
func RestorePasswordHash(encoded string) PasswordHash {
	return PasswordHash{encoded: encoded}
}

// String returns the PHC-encoded representation for persistence.
func (h PasswordHash) String() string { return h.encoded }

// Verify reports whether pw hashes to this PasswordHash. Comparison is
// constant-time; malformed stored hashes verify false, never panic.
func (h PasswordHash) Verify(pw Password) bool {
	cfg := engineConfig()
	ok, err := cfg.Verify(h.encoded, pw.String())
	if err != nil {
		return false
	}
	return ok
}

// engineConfig adapts the security/password engine's policy bounds to the
// Password value object's own rules (8-128 chars): the engine's Argon2id
// cost parameters come from the environment, but policy length bounds are
// identity's to set, since Password.NewPassword already enforced them.
func engineConfig() password.Config {
	cfg, err := password.FromEnv()
	if err != nil {
		cfg = password.DefaultConfig()
	}
	cfg.Policy.MinLength = passwordMinLen
	cfg.Policy.MaxLength = passwordMaxLen
	return cfg
}
