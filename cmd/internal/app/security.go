package app

import "errors"

// ValidateSecurityConfig enforces Arc's security policy at startup.
//
// Fail-fast is intentional: an auth service that starts up without a
// database, a token audience, or sane token lifetimes is misconfigured,
// not degraded.
func ValidateSecurityConfig(cfg Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("security policy: ARC_DATABASE_URL is required")
	}
	if cfg.JWTAudience == "" {
		return errors.New("security policy: ARC_JWT_AUDIENCE must not be empty")
	}
	if cfg.JWTIssuer == "" {
		return errors.New("security policy: ARC_JWT_ISSUER must not be empty")
	}
	if cfg.AccessTokenTTL <= 0 {
		return errors.New("security policy: ARC_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("security policy: ARC_SESSION_TTL must be positive")
	}
	if cfg.SessionTTL < cfg.AccessTokenTTL {
		return errors.New("security policy: ARC_SESSION_TTL must be at least ARC_ACCESS_TOKEN_TTL")
	}
	return nil
}
