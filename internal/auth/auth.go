// Package auth verifies that the caller named in an operation has actually
// approved the call. Services invoke the Verifier before any mutation; the
// transport layer attaches the caller's credential to the request context.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

// Verifier reports whether the given caller identity has approved the
// current call. A nil return means the identity check passed.
type Verifier interface {
	Verify(ctx context.Context, caller string) error
}

type credentialKey struct{}

// WithCredential returns a context carrying the caller's raw bearer credential.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFromContext returns the bearer credential attached to ctx, if any.
func CredentialFromContext(ctx context.Context) string {
	token, _ := ctx.Value(credentialKey{}).(string)
	return token
}

// TokenVerifier validates HMAC-signed bearer tokens whose subject must match
// the claimed caller identity.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret []byte) *TokenVerifier {
	return &TokenVerifier{secret: secret}
}

func (v *TokenVerifier) Verify(ctx context.Context, caller string) error {
	if caller == "" {
		return domain.ErrUnauthorized
	}
	raw := CredentialFromContext(ctx)
	if raw == "" {
		return domain.ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.ErrUnauthorized
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject != caller {
		return domain.ErrUnauthorized
	}
	return nil
}

// NewToken signs a bearer token for the given subject. Used by tests and by
// operator tooling to mint credentials.
func NewToken(secret []byte, subject string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// AllowAll trusts every claimed identity. Only for local development and
// service tests that exercise logic beyond authentication.
type AllowAll struct{}

func (AllowAll) Verify(_ context.Context, caller string) error {
	if caller == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
