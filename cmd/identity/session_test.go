package identity

import (
	"testing"
	"time"
)

func testClaims(t *testing.T) UserClaims {
	t.Helper()
	id, err := NewIdentifier[User](time.Now())
	if err != nil {
		t.Fatalf("NewIdentifier: %v", err)
	}
	name, err := NewUserName("stanislau")
	if err != nil {
		t.Fatalf("NewUserName: %v", err)
	}
	return UserClaims{ID: id, Name: name, Role: RoleDefault}
}

func TestSessionRefreshYieldsDifferentIDs(t *testing.T) {
	now := time.Now()
	s, err := NewActiveSession(now, testClaims(t), time.Hour)
	if err != nil {
		t.Fatalf("NewActiveSession: %v", err)
	}

	revokedOld, activeNew, err := s.Refresh(now.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if revokedOld.ID() != s.ID() {
		t.Fatalf("revoke preserves id: got %s, want %s", revokedOld.ID(), s.ID())
	}
	if !revokedOld.IsRevoked() {
		t.Fatalf("revokedOld should be Revoked")
	}
	if activeNew.ID() == s.ID() {
		t.Fatalf("refresh must mint a new id, got same id %s", activeNew.ID())
	}
	if !activeNew.IsActive() {
		t.Fatalf("activeNew should be Active")
	}
	if activeNew.Claims().ID != s.Claims().ID {
		t.Fatalf("claims must carry over across refresh")
	}
}

func TestSessionRevokePreservesID(t *testing.T) {
	now := time.Now()
	s, err := NewActiveSession(now, testClaims(t), time.Hour)
	if err != nil {
		t.Fatalf("NewActiveSession: %v", err)
	}
	revoked, err := s.Revoke(now)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked.ID() != s.ID() {
		t.Fatalf("revoke must preserve id")
	}
}

func TestRestoreSessionClassification(t *testing.T) {
	now := time.Now()
	id, err := NewIdentifier[Session](now)
	if err != nil {
		t.Fatalf("NewIdentifier: %v", err)
	}
	claims := testClaims(t)

	active := RestoreSession(id, claims, now.Add(time.Hour), nil, now)
	if !active.IsActive() {
		t.Fatalf("expected Active for future expiry with no revoked_at")
	}

	expired := RestoreSession(id, claims, now.Add(-time.Second), nil, now)
	if !expired.IsExpired() {
		t.Fatalf("expected Expired for past expiry with no revoked_at")
	}

	revokedAt := now.Add(-time.Minute)
	revoked := RestoreSession(id, claims, now.Add(time.Hour), &revokedAt, now)
	if !revoked.IsRevoked() {
		t.Fatalf("revoked_at must dominate even with future expiry")
	}
}
