package aichat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptdeck/promptdeck/pkg/errors"
)

// RetryPolicy re-runs storage operations that failed transiently. Failures
// classified as constraint violations, invalid input, not-found or validation
// are surfaced on the first attempt: retrying them cannot change the outcome
// and would mask a caller bug.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delays:      []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if p.sleep == nil {
		p.sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Retryable(lastErr) {
			return lastErr
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Delays[min(attempt-1, len(p.Delays)-1)]
		slog.Warn("transient storage failure, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", lastErr.Error()))
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return errors.New(op, fmt.Sprintf("operation failed after %d attempts", p.MaxAttempts), lastErr)
}
