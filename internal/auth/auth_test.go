package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "acc-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.AccountID != "acc-1" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "acc-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken("other", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "acc-1", -time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken("secret", token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPINHashAndCheck(t *testing.T) {
	hash, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "1234" {
		t.Fatalf("pin must not be stored in the clear")
	}
	if !CheckPIN(hash, "1234") {
		t.Fatalf("expected pin to verify")
	}
	if CheckPIN(hash, "9999") {
		t.Fatalf("wrong pin must not verify")
	}
}

func TestGenerateAccountNumber(t *testing.T) {
	number, err := GenerateAccountNumber(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(number) != 8 {
		t.Fatalf("expected 8 digits, got %q", number)
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in account number: %q", number)
		}
	}
}
