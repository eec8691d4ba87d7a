package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runSecured(t *testing.T, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	handler := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/artist-search/picasso", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeadersSet(t *testing.T) {
	rec := runSecured(t, nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "img-src 'self' https: data:") {
		t.Fatalf("CSP must allow external images for thumbnails, got %q", csp)
	}
}

func TestHSTSOnlyOverTLS(t *testing.T) {
	rec := runSecured(t, nil)
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be set for plain HTTP")
	}

	rec = runSecured(t, func(r *http.Request) {
		r.Header.Set("X-Forwarded-Proto", "https")
	})
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS expected when forwarded proto is https")
	}
}
