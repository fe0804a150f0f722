package auth

import (
	"context"
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/stall-admin/internal/identity"
)

// ErrInvalidToken is returned for any bearer that cannot be resolved.
var ErrInvalidToken = errors.New("invalid token")

// BearerResolver turns an access token into the caller's identity id.
type BearerResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Claims describes the access-token payload issued by the identity provider.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 access tokens locally with the project secret.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier builds a verifier for the given shared secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// ParseToken validates signature and expiry and returns the claims.
func (tv *TokenVerifier) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tv.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Resolve implements BearerResolver.
func (tv *TokenVerifier) Resolve(_ context.Context, token string) (string, error) {
	claims, err := tv.ParseToken(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ProviderResolver asks the identity provider who owns the token.
type ProviderResolver struct {
	provider identity.Provider
}

// NewProviderResolver wraps provider.
func NewProviderResolver(provider identity.Provider) *ProviderResolver {
	return &ProviderResolver{provider: provider}
}

// Resolve implements BearerResolver.
func (r *ProviderResolver) Resolve(ctx context.Context, token string) (string, error) {
	user, err := r.provider.GetUser(ctx, token)
	if err != nil {
		return "", err
	}
	if user == nil || user.ID == "" {
		return "", ErrInvalidToken
	}
	return user.ID, nil
}
