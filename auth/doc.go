// Package auth holds the authentication contract shared by the HTTP
// middleware and the token services.
//
// Subpackages:
//
//   - auth/jwt      HMAC access and refresh tokens with jti and token_type claims
//   - auth/password password hashing and strength validation
//   - auth/authctx  typed claims in request context
package auth
