package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/golang-jwt/jwt/v5"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Sign(42, "ada@example.com", "ada")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ident, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.ID != "42" || ident.Email != "ada@example.com" || ident.DisplayName != "ada" {
		t.Fatalf("identity = %+v", ident)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier("test-secret")
	good, err := v.Sign(1, "a@b.c", "a")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   1,
		Username: "a",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}

	noName := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{UserID: 1})
	noNameToken, err := noName.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign nameless: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", mustSign(t, NewVerifier("other-secret"))},
		{"expired", expiredToken},
		{"missing username", noNameToken},
		{"tampered", good + "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.token); !errors.Is(err, core.ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func mustSign(t *testing.T, v *Verifier) string {
	t.Helper()
	token, err := v.Sign(1, "a@b.c", "a")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}
