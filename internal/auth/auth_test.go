package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	tok, err := m.Generate("user-123", "pro", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID: got %s", claims.UserID)
	}
	if claims.Tier != "pro" {
		t.Errorf("Tier: got %s", claims.Tier)
	}
	if claims.Admin {
		t.Error("Admin should be false")
	}
	if claims.Issuer != "yetai" {
		t.Errorf("Issuer: got %s", claims.Issuer)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	tok, err := m.Generate("user-123", "free", false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-a", time.Hour)
	m2 := NewJWTManager("secret-b", time.Hour)

	tok, err := m1.Generate("user-123", "free", true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := m2.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	h, err := HashPassword("long-enough-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "long-enough-password" {
		t.Error("hash should not equal plaintext")
	}

	if err := CheckPassword(h, "long-enough-password"); err != nil {
		t.Errorf("CheckPassword match: %v", err)
	}
	if err := CheckPassword(h, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}
