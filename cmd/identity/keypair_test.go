package identity

import (
	"crypto/rand"
	"encoding/pem"
	"testing"
	"time"
)

func newTestKeyPairValue(t *testing.T) KeyPairValue {
	t.Helper()
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	v, err := NewKeyPairValue(seed)
	if err != nil {
		t.Fatalf("NewKeyPairValue: %v", err)
	}
	return v
}

func TestKeyPairRotate(t *testing.T) {
	now := time.Now()
	k, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}

	accessTTL := 5 * time.Minute
	expiringOld, activeNew, err := k.Rotate(now, newTestKeyPairValue(t), accessTTL)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if expiringOld.ID() != k.ID() {
		t.Fatalf("rotate must preserve the old key's id in its Expiring half")
	}
	if !expiringOld.IsExpiring() {
		t.Fatalf("old key should be Expiring")
	}
	wantExpiry := now.Add(2 * accessTTL)
	if !expiringOld.ExpiresAt().Equal(wantExpiry) {
		t.Fatalf("expires_at = %v, want %v (2x access_ttl)", expiringOld.ExpiresAt(), wantExpiry)
	}
	if activeNew.ID() == k.ID() {
		t.Fatalf("rotate must mint a fresh id for the new Active key")
	}
	if !activeNew.IsActive() {
		t.Fatalf("new key should be Active")
	}
}

func TestKeyPairRestoreClassification(t *testing.T) {
	now := time.Now()
	id, err := NewIdentifier[KeyPair](now)
	if err != nil {
		t.Fatalf("NewIdentifier: %v", err)
	}
	v := newTestKeyPairValue(t)

	active := RestoreKeyPair(id, v, nil, nil, now)
	if !active.IsActive() {
		t.Fatalf("nil expires_at and revoked_at should classify Active")
	}

	future := now.Add(time.Hour)
	expiring := RestoreKeyPair(id, v, &future, nil, now)
	if !expiring.IsExpiring() {
		t.Fatalf("future expires_at with no revoked_at should classify Expiring")
	}

	past := now.Add(-time.Second)
	expired := RestoreKeyPair(id, v, &past, nil, now)
	if !expired.IsExpired() {
		t.Fatalf("past expires_at with no revoked_at should classify Expired")
	}

	revokedAt := now.Add(-time.Minute)
	revoked := RestoreKeyPair(id, v, &future, &revokedAt, now)
	if !revoked.IsRevoked() {
		t.Fatalf("revoked_at must dominate even with future expires_at")
	}
}

func TestKeyPairValuePEMRoundTrip(t *testing.T) {
	v := newTestKeyPairValue(t)
	pemStr, err := v.PEM()
	if err != nil {
		t.Fatalf("PEM: %v", err)
	}
	restored, err := KeyPairValueFromPEM(pemStr)
	if err != nil {
		t.Fatalf("KeyPairValueFromPEM: %v", err)
	}
	if string(restored.PublicKey()) != string(v.PublicKey()) {
		t.Fatalf("public key mismatch after PEM round-trip")
	}
}

func TestKeyPairValuePublicKeyPEMExposesNoSecret(t *testing.T) {
	v := newTestKeyPairValue(t)
	pubPEM, err := v.PublicKeyPEM()
	if err != nil {
		t.Fatalf("PublicKeyPEM: %v", err)
	}
	privPEM, err := v.PEM()
	if err != nil {
		t.Fatalf("PEM: %v", err)
	}
	if pubPEM == privPEM {
		t.Fatalf("PublicKeyPEM must not equal the private key PEM")
	}
	block, _ := pem.Decode([]byte(pubPEM))
	if block == nil || block.Type != "PUBLIC KEY" {
		t.Fatalf("PublicKeyPEM block type = %+v, want PUBLIC KEY", block)
	}
}
