package identity

import "testing"

func TestNewUserName(t *testing.T) {
	if _, err := NewUserName("ab"); err == nil {
		t.Fatalf("expected error for too-short username")
	}
	long := make([]byte, 33)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewUserName(string(long)); err == nil {
		t.Fatalf("expected error for too-long username")
	}
	if _, err := NewUserName("bad name!"); err == nil {
		t.Fatalf("expected error for invalid characters")
	}
	u, err := NewUserName("stanislau")
	if err != nil {
		t.Fatalf("NewUserName: %v", err)
	}
	if u.String() != "stanislau" {
		t.Fatalf("String() = %q, want %q", u.String(), "stanislau")
	}
}
