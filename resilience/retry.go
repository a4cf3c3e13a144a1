package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int
	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration
	// MaxBackoff caps every wait.
	MaxBackoff time.Duration
	// Factor multiplies the wait after each failure. 1 keeps it constant.
	Factor float64
	// Jitter spreads each wait by up to ±Jitter of its value.
	Jitter float64
	// RetryIf reports whether err is worth another attempt. Nil retries
	// everything except context cancellation.
	RetryIf func(error) bool
	// OnRetry is called before sleeping.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.Factor < 1 {
		c.Factor = 2
	}
	if c.RetryIf == nil {
		c.RetryIf = retryUnlessCanceled
	}
	return c
}

func retryUnlessCanceled(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns the wait after the given failed attempt (1-based),
// before jitter.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	c = c.withDefaults()
	wait := float64(c.InitialBackoff) * math.Pow(c.Factor, float64(attempt-1))
	return time.Duration(math.Min(wait, float64(c.MaxBackoff)))
}

func (c RetryConfig) jittered(attempt int) time.Duration {
	wait := c.Backoff(attempt)
	if c.Jitter <= 0 {
		return wait
	}
	spread := float64(wait) * c.Jitter * (rand.Float64()*2 - 1)
	if d := time.Duration(float64(wait) + spread); d > 0 {
		return d
	}
	return wait
}

// Retry calls fn until it succeeds, RetryIf rejects its error or
// MaxAttempts is reached, and returns the last error. A done ctx stops
// the loop with ctx.Err().
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	cfg = cfg.withDefaults()

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if !cfg.RetryIf(err) || attempt == cfg.MaxAttempts {
			return err
		}

		wait := cfg.jittered(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
