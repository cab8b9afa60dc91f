package security

import (
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "una-passphrase-lunga"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("HashPassword() = %q, want a non-empty hash distinct from the input", hash)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "una-passphrase-lunga"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() = false for the correct password")
	}
	if CheckPassword("sbagliata", hash) {
		t.Error("CheckPassword() = true for the wrong password")
	}
}

func TestTokenManagerRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("Issue() expiry %v is not in the future", expiresAt)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("Verify() = %q, want user-42", userID)
	}
}

func TestTokenManagerRejectsTampering(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, _, err := m.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() with a different secret = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Verify(token + "x"); err != ErrInvalidToken {
		t.Errorf("Verify() of a mangled token = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Verify(""); err != ErrInvalidToken {
		t.Errorf("Verify() of an empty token = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, _, err := m.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() of an expired token = %v, want ErrInvalidToken", err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Allow() = false on request %d, want the first 3 allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Allow() = true after the budget is spent")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Allow() = false for a different IP with a fresh budget")
	}
}
