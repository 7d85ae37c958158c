package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shrey257/CashAI/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cashai"

// JWTClaims represents the custom claims in access tokens.
// Sub carries the user id every /v1 request acts on.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens minted by the auth service and
// can mint them itself for local use.
type TokenVerifier struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenVerifier creates a verifier for tokens signed with secret.
func NewTokenVerifier(secret string, accessTTL time.Duration) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// ValidateAccessToken parses tokenString and returns its claims when the
// signature, expiry and token type all check out.
func (v *TokenVerifier) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.ErrUnauthorized{Message: "token expired"}
		}
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	if strings.TrimSpace(claims.Sub) == "" {
		return nil, &domain.ErrUnauthorized{Message: "token has no subject"}
	}

	return claims, nil
}

// IssueAccessToken signs an access token for userID.
func (v *TokenVerifier) IssueAccessToken(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", &domain.ErrValidation{Field: "user_id", Message: "user id is required"}
	}

	now := v.now()
	claims := JWTClaims{
		Sub:  userID,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
