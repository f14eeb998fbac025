package auth

import (
	"context"
	"errors"
)

// ErrNoIdentity is returned when a guarded handler runs without an identity in context.
var ErrNoIdentity = errors.New("no identity in request context")

type contextKey string

const (
	claimsKey contextKey = "claims"
	tokenKey  contextKey = "token"
)

// WithClaims attaches verified claims and the raw credential to ctx.
func WithClaims(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, tokenKey, token)
}

// ClaimsFromContext returns the claims attached by the identity middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// TokenFromContext returns the raw credential attached by the identity middleware.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
