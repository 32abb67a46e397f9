package retry

import (
	"context"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Do runs fn up to attempts times, doubling the delay between attempts
// starting from initialDelay. It returns nil on the first success, the last
// error once attempts are exhausted, or the context error if ctx is
// cancelled while waiting.
func Do(ctx context.Context, attempts int, initialDelay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultDelay
	}
	var lastErr error
	delay := initialDelay
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}
