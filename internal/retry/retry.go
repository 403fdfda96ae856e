package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes a bounded retry strategy with exponential backoff. The
// zero value is unusable; use NewPolicy for sane defaults.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
}

func NewPolicy(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Logger:      logger,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted or the context
// is cancelled. The delay doubles after every failed attempt.
func (p Policy) Do(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < p.MaxAttempts {
			if p.Logger != nil {
				p.Logger.Warn("operation failed, retrying",
					"operation", operation,
					"attempt", attempt,
					"max_attempts", p.MaxAttempts,
					"delay", delay,
					"error", lastErr,
				)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, p.MaxAttempts, lastErr)
}
