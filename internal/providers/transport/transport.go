// Package transport holds the retry discipline shared by the external
// service providers: one retry with a short backoff, transport-level only.
// Semantic content is never retried.
package transport

import (
	"context"
	"time"
)

// Retry runs op, and on failure waits once and runs it again. The second
// failure is returned to the caller, which surfaces the user-facing
// transport fallback.
func Retry(ctx context.Context, wait time.Duration, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return err
		}
	}

	return op()
}
