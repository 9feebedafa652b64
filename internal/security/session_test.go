package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)
	playerID := GeneratePlayerID()

	token, err := signer.Sign(playerID)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	got, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if got != playerID {
		t.Errorf("Verify() = %q, want %q", got, playerID)
	}
}

func TestTokenSignerRejects(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := signer.Verify(tt.token); err == nil {
				t.Error("Verify() accepted an invalid token")
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenSigner("other-secret", time.Hour)
		token, err := other.Sign(GeneratePlayerID())
		if err != nil {
			t.Fatalf("Sign() error: %v", err)
		}
		if _, err := signer.Verify(token); err == nil {
			t.Error("Verify() accepted a token signed with a different secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenSigner("test-secret", -time.Hour)
		token, err := expired.Sign(GeneratePlayerID())
		if err != nil {
			t.Fatalf("Sign() error: %v", err)
		}
		if _, err := signer.Verify(token); err == nil {
			t.Error("Verify() accepted an expired token")
		}
	})
}

func TestIsSecureRequest(t *testing.T) {
	t.Run("plain http", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/", nil)
		if IsSecureRequest(r) {
			t.Error("plain HTTP request reported as secure")
		}
	})

	t.Run("forwarded proto", func(t *testing.T) {
		r := httptest.NewRequest("GET", "http://example.com/", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		if !IsSecureRequest(r) {
			t.Error("proxied HTTPS request not reported as secure")
		}
	})
}

func TestPINHashing(t *testing.T) {
	hash, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN() error: %v", err)
	}
	if !CheckPIN(hash, "1234") {
		t.Error("CheckPIN() rejected the correct PIN")
	}
	if CheckPIN(hash, "4321") {
		t.Error("CheckPIN() accepted a wrong PIN")
	}
}
