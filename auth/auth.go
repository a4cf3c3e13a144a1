package auth

import "context"

// TokenValidator validates a bearer token and returns the authenticated
// principal. Middleware stores the result with authctx.Set.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (any, error)
}

// TokenValidatorFunc adapts a function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (any, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}
