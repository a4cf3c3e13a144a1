// Package resilience provides retry with exponential backoff and
// token-bucket rate limiting, per process or per client key.
package resilience
