// Package server provides the HTTP server: Gin routing behind a
// net/http middleware chain, served with h2c.
//
// # Middleware
//
// Server-wide (server/middleware, applied by ApplyMiddleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - AllowedHosts: Django-style Host header check
//   - CORS: allowed origins from settings
//   - CSRFOrigins: Origin check for cookie-bearing unsafe requests
//   - BodySizeLimit: request body limit
//   - RequestLogger: access log on the api channel
//
// Per route group: Auth (bearer token) and Observe (spans and metrics).
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /version: build version information
package server
