package authapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "missing", header: "", want: ""},
		{name: "wrong scheme", header: "Basic abc", want: ""},
		{name: "malformed", header: "Bearer", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := bearerToken(req); got != tc.want {
				t.Fatalf("bearerToken() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientIPTrustsForwardedOnlyWhenConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	untrusted := clientIP(req, false)
	if untrusted == nil || untrusted.String() != "10.0.0.1" {
		t.Fatalf("clientIP(trustProxy=false) = %v, want remote addr host", untrusted)
	}

	trusted := clientIP(req, true)
	if trusted == nil || trusted.String() != "203.0.113.9" {
		t.Fatalf("clientIP(trustProxy=true) = %v, want first forwarded hop", trusted)
	}
}
