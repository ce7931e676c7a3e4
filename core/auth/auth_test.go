package auth

import (
	"testing"
	"time"

	"musichub/model"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("correct password should verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret", 7*24*time.Hour)

	token, err := signer.GenerateToken(42, model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := signer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, model.RoleAdmin)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)
	other := NewTokenSigner("another-secret", time.Hour)

	token, err := signer.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	signer := NewTokenSigner("test-secret", -time.Minute)

	token, err := signer.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := signer.ParseToken(token); err == nil {
		t.Error("expired token should not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)
	if _, err := signer.ParseToken("not.a.token"); err == nil {
		t.Error("malformed token should not parse")
	}
}
