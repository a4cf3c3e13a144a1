// Package errors defines AppError, the structured error carried from
// services to the HTTP layer: a machine code, a client-safe message, an
// HTTP status and a retryable flag derived from the code.
package errors
