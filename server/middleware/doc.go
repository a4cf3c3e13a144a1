// Package middleware holds the HTTP middleware of the API server.
//
// Server-wide middleware wraps the root handler in this order: Recovery,
// RequestID, AllowedHosts, CORS, CSRFOrigins, BodySizeLimit, RequestLogger.
// Auth and Observe are Gin handlers attached to route groups.
package middleware
