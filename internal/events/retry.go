package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thenoetrevino/boardsync/internal/models"
)

// InvokeWithRetry retries an invocation the server rejected with a storage
// conflict, backing off 50ms, 100ms, 200ms... Any other outcome is returned
// at once. The error from the final attempt is returned if all fail.
func InvokeWithRetry(ctx context.Context, inv Invoker, method string, args, result any, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := inv.Invoke(ctx, method, args, result)
		if err == nil {
			if attempt > 0 {
				slog.Debug("invocation succeeded after retry", "method", method, "attempt", attempt+1)
			}
			return nil
		}
		if !errors.Is(err, models.ErrStorageConflict) {
			return err
		}
		lastErr = err

		if attempt < maxRetries-1 {
			delay := baseDelay * (1 << attempt)
			slog.Debug("invocation conflicted, retrying",
				"method", method,
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	slog.Warn("invocation failed after all retries", "method", method, "attempts", maxRetries, "error", lastErr)
	return lastErr
}

type retrying struct {
	inv        Invoker
	maxRetries int
}

func (r retrying) Invoke(ctx context.Context, method string, args, result any) error {
	return InvokeWithRetry(ctx, r.inv, method, args, result, r.maxRetries)
}

// Retrying wraps inv so that every invocation goes through InvokeWithRetry.
func Retrying(inv Invoker, maxRetries int) Invoker {
	return retrying{inv: inv, maxRetries: maxRetries}
}
