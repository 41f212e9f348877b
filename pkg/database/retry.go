package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = 1 * time.Second
	retryJitterFraction  = 0.25
)

// retryBackoff returns the wait before the given attempt (0-indexed): 1s, 2s,
// 4s with ±25% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := defaultRetryBaseWait << attempt
	jitter := time.Duration(float64(base) * retryJitterFraction * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter for retry backoff
	return base + jitter
}

// connectWithRetry runs connect up to defaultRetryAttempts times, sleeping
// between attempts. Used for startup dials where the backing store may still
// be coming up alongside the service.
func connectWithRetry(ctx context.Context, store string, logger *slog.Logger, wait func(int) time.Duration, connect func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		if lastErr = connect(ctx); lastErr == nil {
			return nil
		}
		if attempt == defaultRetryAttempts-1 {
			break
		}

		d := wait(attempt)
		if logger != nil {
			logger.Warn(store+" connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", defaultRetryAttempts),
				slog.Duration("backoff", d),
				slog.String("error", lastErr.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to %s: context canceled during retry: %w", store, ctx.Err())
		case <-time.After(d):
		}
	}
	return fmt.Errorf("connect to %s after %d attempts: %w", store, defaultRetryAttempts, lastErr)
}
