package shared

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Conflict retry schedule: 100ms, 200ms, 400ms.
const (
	conflictRetries   = 3
	conflictBaseDelay = 100 * time.Millisecond
)

// RetryOnConflict runs fn until it succeeds, fails with a non-conflict error,
// or the retry budget is spent. Only SQLite busy/locked errors are retried.
func RetryOnConflict(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsSQLiteConflictError(err) || i == conflictRetries-1 {
			break
		}

		delay := conflictBaseDelay * time.Duration(1<<i)
		slog.Debug("sqlite conflict, retrying", "op", op, "attempt", i+1, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
