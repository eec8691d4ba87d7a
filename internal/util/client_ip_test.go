package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestFrom(remoteAddr string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/login", nil)
	r.RemoteAddr = remoteAddr
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestClientIPIgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	r := requestFrom("203.0.113.7:54321", map[string]string{
		"X-Forwarded-For": "198.51.100.1",
	})
	if got := ClientIP(r, nil); got != "203.0.113.7" {
		t.Fatalf("expected peer address, got %q", got)
	}
}

func TestClientIPWalksForwardedChainFromTrustedProxy(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("parse trusted proxies: %v", err)
	}
	r := requestFrom("10.0.0.5:443", map[string]string{
		"X-Forwarded-For": "198.51.100.1, 10.0.0.9",
	})
	if got := ClientIP(r, trusted); got != "198.51.100.1" {
		t.Fatalf("expected first untrusted hop, got %q", got)
	}
}

func TestClientIPUsesRealIPFallback(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.5"})
	if err != nil {
		t.Fatalf("parse trusted proxies: %v", err)
	}
	r := requestFrom("10.0.0.5:443", map[string]string{
		"X-Real-IP": "198.51.100.2",
	})
	if got := ClientIP(r, trusted); got != "198.51.100.2" {
		t.Fatalf("expected X-Real-IP value, got %q", got)
	}
}

func TestNewTrustedProxiesRejectsGarbage(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatalf("expected parse error")
	}
	trusted, err := NewTrustedProxies([]string{"", "   "})
	if err != nil {
		t.Fatalf("blank entries should be skipped: %v", err)
	}
	if trusted != nil {
		t.Fatalf("all-blank input should mean trust none")
	}
}
