package authapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsUnknownFieldsAndTrailingData(t *testing.T) {
	var dst signUpRequest

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"user_name":"a","password":"b","extra":true}`))
	if err := decodeJSON(rr, req, 1<<20, &dst); err == nil {
		t.Fatalf("expected error for unknown field")
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"user_name":"a","password":"b"}{}`))
	if err := decodeJSON(rr, req, 1<<20, &dst); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestDecodeJSONAcceptsWellFormedBody(t *testing.T) {
	var dst signUpRequest
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"user_name":"stanislau","password":"Str0ng!Pass"}`))
	if err := decodeJSON(rr, req, 1<<20, &dst); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if dst.UserName != "stanislau" || dst.Password != "Str0ng!Pass" {
		t.Fatalf("decoded request = %+v", dst)
	}
}

func TestWriteErrorShape(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusUnauthorized, "invalid_credentials", "wrong user name or password")

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"code":"invalid_credentials"`) {
		t.Fatalf("body = %s, missing error code", body)
	}
}
