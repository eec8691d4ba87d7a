package session

import (
	"errors"
	"testing"
	"time"

	"artsearch/pkg/domain"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := New("test-secret", time.Hour)
	token, err := issuer.Issue(domain.Identity{
		Email:           "alice@example.com",
		Name:            "Alice",
		ProfileImageURL: "https://www.gravatar.com/avatar/abc?s=200&d=identicon",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %q", identity.Email)
	}
	if identity.Name != "Alice" {
		t.Fatalf("unexpected name: %q", identity.Name)
	}
	if identity.ProfileImageURL == "" {
		t.Fatalf("expected profile image url claim")
	}
	if !identity.IsAuthenticated {
		t.Fatalf("expected isAuthenticated claim")
	}
}

func TestVerifyFailsAfterExpiry(t *testing.T) {
	issuer := New("test-secret", time.Hour)
	issued := time.Now().UTC()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue(domain.Identity{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Still valid just inside the window.
	issuer.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("token should be valid before expiry: %v", err)
	}

	// More than one hour after issuance it must fail.
	issuer.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got: %v", err)
	}
}

func TestVerifyRejectsMissingAndTamperedTokens(t *testing.T) {
	issuer := New("test-secret", time.Hour)
	if _, err := issuer.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing token, got: %v", err)
	}
	if _, err := issuer.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got: %v", err)
	}

	other := New("other-secret", time.Hour)
	token, err := other.Issue(domain.Identity{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("issue with other secret: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong signature, got: %v", err)
	}
}
