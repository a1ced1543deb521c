package actor

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret, subject, name string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: name,
	})
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestFromToken_ValidToken(t *testing.T) {
	tok := signedToken(t, "secret", "admin-1", "Operator")
	id := FromToken(tok, "secret")
	if id.ID != "admin-1" || id.Label != "Operator" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestFromToken_NeverFailsHard(t *testing.T) {
	if !FromToken("", "secret").IsZero() {
		t.Fatalf("empty token must yield empty identity")
	}
	if !FromToken("garbage", "secret").IsZero() {
		t.Fatalf("garbage token must yield empty identity")
	}
	tok := signedToken(t, "other-secret", "admin-1", "Operator")
	if !FromToken(tok, "secret").IsZero() {
		t.Fatalf("wrong-secret token must yield empty identity")
	}
	if !FromToken(tok, "").IsZero() {
		t.Fatalf("no configured secret must yield empty identity")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{ID: "a", Label: "b"})
	if got := FromContext(ctx); got.ID != "a" || got.Label != "b" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if !FromContext(context.Background()).IsZero() {
		t.Fatalf("expected empty identity from bare context")
	}
}
