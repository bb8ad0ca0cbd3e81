package resilience

import (
	"context"
	"time"
)

type RetryConfig struct {
	MaxRetries int
	// BaseDelay grows linearly: attempt n waits n*BaseDelay.
	BaseDelay time.Duration
}

// Retry calls fn until it succeeds, returns a non-retryable error, or
// MaxRetries extra attempts are spent. It stops early when ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(attempt int) error) error {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * cfg.BaseDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
