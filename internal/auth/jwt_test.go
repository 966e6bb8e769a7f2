package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/taskpit/taskpit/internal/domain/user"
)

func testUser() user.User {
	now := time.Now().UTC().Truncate(time.Second)

	return user.User{
		ID:        "u-1",
		Email:     "alice@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	u := testUser()

	raw, err := m.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID != u.ID {
		t.Errorf("user id = %q, want %q", claims.UserID, u.ID)
	}
	if claims.Email != u.Email {
		t.Errorf("email = %q, want %q", claims.Email, u.Email)
	}
	if !claims.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("created_at = %v, want %v", claims.CreatedAt, u.CreatedAt)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	raw, err := issuer.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, raw := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := m.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccessToken(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	raw, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	tampered := raw + "x"

	if _, err := m.VerifyAccessToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected tampered token to be rejected, got %v", err)
	}
}
