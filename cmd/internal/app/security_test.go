package app

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:    "postgres://localhost/arc",
		JWTAudience:    "arc",
		JWTIssuer:      "arc",
		AccessTokenTTL: 5 * time.Minute,
		SessionTTL:     30 * 24 * time.Hour,
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	t.Parallel()

	if err := ValidateSecurityConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}

	missingDB := validConfig()
	missingDB.DatabaseURL = ""
	if err := ValidateSecurityConfig(missingDB); err == nil {
		t.Fatalf("expected error for missing database url")
	}

	missingAudience := validConfig()
	missingAudience.JWTAudience = ""
	if err := ValidateSecurityConfig(missingAudience); err == nil {
		t.Fatalf("expected error for missing jwt audience")
	}

	nonPositiveTTL := validConfig()
	nonPositiveTTL.AccessTokenTTL = 0
	if err := ValidateSecurityConfig(nonPositiveTTL); err == nil {
		t.Fatalf("expected error for non-positive access token ttl")
	}

	shortSession := validConfig()
	shortSession.SessionTTL = time.Second
	shortSession.AccessTokenTTL = time.Minute
	if err := ValidateSecurityConfig(shortSession); err == nil {
		t.Fatalf("expected error when session ttl is shorter than access token ttl")
	}
}
