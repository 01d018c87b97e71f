package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned when a token is malformed, tampered with, or
// expired. Callers do not learn which.
var ErrInvalidToken = errors.New("security: invalid token")

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, errHash := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if errHash != nil {
		return "", fmt.Errorf("security: hash password: %w", errHash)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// TokenClaims are the claims carried by an access token. Subject is the
// account email.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for subject, valid for expiry.
func IssueToken(secret, subject string, expiry time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("security: empty signing secret")
	}
	now := time.Now().UTC()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseToken validates an access token and returns its claims. Any
// signature, format, or expiry failure yields ErrInvalidToken.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
