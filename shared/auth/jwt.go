package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningKey = errors.New("invalid signing key")
	ErrInvalidToken      = errors.New("invalid token")
)

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	FullName    string   `json:"fullName"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// JWTAuthenticator signs and verifies HS256 session tokens with a single symmetric key.
type JWTAuthenticator struct {
	key       []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewSigningKey decodes a base64 encoded secret into the raw MAC key.
func NewSigningKey(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSigningKey, err)
	}

	// HS256 requires at least 256 bits of key material.
	if len(key) < 32 {
		return nil, fmt.Errorf("%w: key must be at least 32 bytes, got %d", ErrInvalidSigningKey, len(key))
	}

	return key, nil
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(key []byte, expiresIn time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		key:       key,
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (a *JWTAuthenticator) WithClock(now func() time.Time) *JWTAuthenticator {
	a.now = now
	return a
}

// ExpiresIn returns the configured token lifetime.
func (a *JWTAuthenticator) ExpiresIn() time.Duration {
	return a.expiresIn
}

// GenerateToken builds and signs a session token for subject.
func (a *JWTAuthenticator) GenerateToken(subject, fullName string, authorities []string) (string, error) {
	now := a.now()
	claims := SessionClaims{
		FullName:    fullName,
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.key)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateToken verifies the signature and expiry of tokenString and returns its claims.
// Every parse failure, including a bad signature or a malformed token, is reported as ErrInvalidToken.
func (a *JWTAuthenticator) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.key, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
