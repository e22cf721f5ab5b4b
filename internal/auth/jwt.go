// Package auth verifies the bearer tokens GoTrue issues and maps them to
// tenants.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates a token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSubject indicates a valid token without a tenant.
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims are the GoTrue claims the service reads. The subject is the tenant.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver resolves tenants from HS256 tokens signed with the GoTrue
// JWT secret.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

// NewJWTResolver creates a resolver for the given secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), now: time.Now}
}

// ResolveTenant returns the subject of a valid token.
func (r *JWTResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	claims, err := r.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse validates a token and returns its claims.
func (r *JWTResolver) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithTimeFunc(r.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// Issue signs a token for a tenant. It backs local development and tests;
// production tokens come from GoTrue.
func (r *JWTResolver) Issue(tenantID, email string, ttl time.Duration) (string, error) {
	now := r.now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
