package token

import (
	"crypto/ed25519"
	"testing"
	"time"
)

func mustKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey: %v", err)
	}
	return pub, priv
}

func TestSignAndVerify_OK(t *testing.T) {
	pub, priv := mustKeyPair(t)
	now := time.Now()

	signed, err := Sign(priv, "01ARZ3NDEKTSV4RRFFQ69G5FAV", Claims{
		Audience: "arc", Issuer: "arc",
		Expiry: now.Add(5 * time.Minute), Subject: "user-1", Name: "stanislau", Role: "default",
	})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	got, err := Verify(signed, pub, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "arc", "arc", now)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.Subject != "user-1" || got.Name != "stanislau" || got.Role != "default" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestExtractKeyID_NoVerification(t *testing.T) {
	_, priv := mustKeyPair(t)
	now := time.Now()
	signed, err := Sign(priv, "01ARZ3NDEKTSV4RRFFQ69G5FAV", Claims{
		Audience: "arc", Issuer: "arc", Expiry: now.Add(time.Minute), Subject: "u", Name: "n", Role: "default",
	})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	kid, err := ExtractKeyID(signed)
	if err != nil {
		t.Fatalf("ExtractKeyID error: %v", err)
	}
	if kid != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("kid = %q, want %q", kid, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	}
}

func TestVerify_WrongKeyID(t *testing.T) {
	pub, priv := mustKeyPair(t)
	now := time.Now()
	signed, err := Sign(priv, "01ARZ3NDEKTSV4RRFFQ69G5FAV", Claims{
		Audience: "arc", Issuer: "arc", Expiry: now.Add(time.Minute), Subject: "u", Name: "n", Role: "default",
	})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if _, err := Verify(signed, pub, "01BX5ZZKBKACTAV9WEVGEMMVRZ", "arc", "arc", now); err != ErrKeyPairIDsDoNotMatch {
		t.Fatalf("expected ErrKeyPairIDsDoNotMatch, got %v", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	pub, priv := mustKeyPair(t)
	now := time.Now()
	signed, err := Sign(priv, "01ARZ3NDEKTSV4RRFFQ69G5FAV", Claims{
		Audience: "arc", Issuer: "arc", Expiry: now.Add(-time.Second), Subject: "u", Name: "n", Role: "default",
	})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if _, err := Verify(signed, pub, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "arc", "arc", now); err != ErrDecoding {
		t.Fatalf("expected ErrDecoding for expired token, got %v", err)
	}
}

func TestExtractKeyID_Missing(t *testing.T) {
	if _, err := ExtractKeyID("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}
