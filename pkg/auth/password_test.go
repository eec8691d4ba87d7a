package auth

import "testing"

func TestHashPasswordAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "" || hash == "pw123" {
		t.Fatalf("expected non-empty hash distinct from password, got %q", hash)
	}
	if !CheckPassword("pw123", hash) {
		t.Fatalf("expected password check to pass")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("expected password check to fail for wrong password")
	}
}

func TestCheckPasswordRejectsMalformedHash(t *testing.T) {
	if CheckPassword("pw123", "not-a-bcrypt-hash") {
		t.Fatalf("expected malformed stored hash to fail")
	}
	if CheckPassword("pw123", "") {
		t.Fatalf("expected empty stored hash to fail")
	}
}
