package app

import "testing"

func TestParseCSV(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "a", want: []string{"a"}},
		{in: "a,b,c", want: []string{"a", "b", "c"}},
		{in: " a , b ,, c ", want: []string{"a", "b", "c"}},
	}

	for _, tc := range cases {
		got := parseCSV(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("parseCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("parseCSV(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.JWTAudience == "" || cfg.JWTIssuer == "" {
		t.Fatalf("expected non-empty JWT audience/issuer defaults, got %+v", cfg)
	}
	if cfg.AccessTokenTTL <= 0 {
		t.Fatalf("expected a positive default AccessTokenTTL")
	}
	if cfg.SessionTTL <= cfg.AccessTokenTTL {
		t.Fatalf("expected SessionTTL to exceed AccessTokenTTL by default")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Fatalf("expected a non-empty default CORS allowlist")
	}
}
