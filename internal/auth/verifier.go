// Package auth implements the identity verifier consumed by the coordinator:
// an HMAC-signed JWT carrying the user's id, email, and username.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 7 * 24 * time.Hour

type claims struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify resolves a credential token into a durable identity. Any parse,
// signature, or expiry problem comes back wrapped in core.ErrTokenInvalid.
func (v *Verifier) Verify(_ context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", core.ErrTokenInvalid)
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTokenInvalid, err)
	}
	if c.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", core.ErrTokenInvalid)
	}
	return &domain.Identity{
		ID:          domain.UserID(strconv.FormatInt(c.UserID, 10)),
		Email:       c.Email,
		DisplayName: c.Username,
	}, nil
}

// Sign issues a token for the given account. The account service owns token
// issuance in production; this exists for tooling and tests.
func (v *Verifier) Sign(userID int64, email, username string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	return t.SignedString(v.secret)
}
