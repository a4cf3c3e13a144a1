// Package accounts owns users and their refresh tokens.
//
// Every issued refresh token is recorded as an OutstandingToken; logging
// out adds a BlacklistedToken row, after which Refresh rejects the token.
package accounts
