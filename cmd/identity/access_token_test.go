package identity

import (
	"testing"
	"time"
)

func TestAccessTokenSignVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	pair, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	claims := testClaims(t)
	tok := NewAccessToken(claims, now.Add(5*time.Minute))

	signed, err := tok.Sign(pair)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	kid, err := ExtractAccessTokenKeyID(signed)
	if err != nil {
		t.Fatalf("ExtractAccessTokenKeyID: %v", err)
	}
	if kid != pair.ID() {
		t.Fatalf("extract_keypair_id = %s, want %s", kid, pair.ID())
	}

	got, err := VerifyAccessToken(signed, pair, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if got.ID != claims.ID || got.Name != claims.Name || got.Role != claims.Role {
		t.Fatalf("verified claims = %+v, want %+v", got, claims)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Now()
	pair, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	tok := NewAccessToken(testClaims(t), now.Add(-time.Second))
	signed, err := tok.Sign(pair)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := VerifyAccessToken(signed, pair, now); err == nil {
		t.Fatalf("expected verification failure for expired token")
	}
}

func TestAccessTokenTamperedPayloadFailsVerification(t *testing.T) {
	now := time.Now()
	pair, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	tok := NewAccessToken(testClaims(t), now.Add(5*time.Minute))
	signed, err := tok.Sign(pair)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := tamperPayloadSegment(t, signed)
	if _, err := VerifyAccessToken(tampered, pair, now); err == nil {
		t.Fatalf("expected verification failure for tampered payload")
	}
}

func TestAccessTokenWrongKeyIDRejected(t *testing.T) {
	now := time.Now()
	pair, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	other, err := NewKeyPair(now, newTestKeyPairValue(t))
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	tok := NewAccessToken(testClaims(t), now.Add(5*time.Minute))
	signed, err := tok.Sign(pair)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := VerifyAccessToken(signed, other, now); err == nil {
		t.Fatalf("expected failure verifying against the wrong key-pair")
	}
}

func tamperPayloadSegment(t *testing.T, signed string) string {
	t.Helper()
	segs := splitDots(signed)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	payload := []byte(segs[1])
	payload[len(payload)/2] ^= 0x01
	segs[1] = string(payload)
	return segs[0] + "." + segs[1] + "." + segs[2]
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
