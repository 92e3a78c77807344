package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifyAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)

	tok, err := m.GenerateAccessToken("user-123", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	id, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}

	if id.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", id.UserID, "user-123")
	}
	if id.Role != "ROLE_USER" {
		t.Fatalf("role mismatch: got %q want %q", id.Role, "ROLE_USER")
	}
}

func TestVerifyAccessToken_TwoTokensDiffer(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)

	t1, err := m.GenerateAccessToken("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	// iat has second resolution, so force a different claim set
	time.Sleep(1100 * time.Millisecond)

	t2, err := m.GenerateAccessToken("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if t1 == t2 {
		t.Fatalf("expected structurally different tokens")
	}

	if _, err := m.VerifyAccessToken(t1); err != nil {
		t.Fatalf("first token should still verify: %v", err)
	}
	if _, err := m.VerifyAccessToken(t2); err != nil {
		t.Fatalf("second token should verify: %v", err)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", -1*time.Second)

	tok, err := m.GenerateAccessToken("user-123", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := m.VerifyAccessToken(tok); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewManager("right-secret", time.Hour).GenerateAccessToken("u1", "ROLE_USER")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := NewManager("wrong-secret", time.Hour).VerifyAccessToken(tok); err == nil {
		t.Fatalf("expected token signed with another secret to fail")
	}
}

func TestVerifyAccessToken_NoneAlgorithmRejected(t *testing.T) {
	t.Parallel()

	claims := Claims{
		Role: "ROLE_USER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing with none: %v", err)
	}

	if _, err := NewManager("test-secret", time.Hour).VerifyAccessToken(raw); err == nil {
		t.Fatalf("alg=none token must be rejected")
	}
}

func TestVerifyAccessToken_MissingRoleDefaults(t *testing.T) {
	t.Parallel()

	secret := "test-secret"

	// Legacy token shape: subject only, no role claim.
	legacy := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "legacy-user",
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
	})

	raw, err := legacy.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing legacy token: %v", err)
	}

	id, err := NewManager(secret, time.Hour).VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}

	if id.Role != DefaultRole {
		t.Fatalf("role should default to %q, got %q", DefaultRole, id.Role)
	}
}

func TestVerifyAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewManager("k", time.Hour).VerifyAccessToken("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
