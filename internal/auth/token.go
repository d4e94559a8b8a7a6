package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued bearer token stays valid. Driver
// mobile clients refresh by logging in again.
const TokenTTL = 7 * 24 * time.Hour

// TokenResolver issues and verifies HS256 bearer tokens for clients
// that cannot carry a session cookie.
type TokenResolver struct {
	secret []byte
}

func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret)}
}

// Issue signs a token whose subject is the user ID.
func (t *TokenResolver) Issue(userID string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("token secret is empty")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	})
	return token.SignedString(t.secret)
}

// Verify validates a token string and returns the user ID it carries.
// Any failure collapses to ErrUnauthenticated.
func (t *TokenResolver) Verify(tokenStr string) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrUnauthenticated
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrUnauthenticated
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
