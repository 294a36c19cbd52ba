package ratelimit

import (
	"context"
	"time"

	"xid/pkg/errors"
	"xid/pkg/logger"
)

// Operation is a function the waiter retries on recoverable errors
type Operation func() error

// networkRetryDelay is the pause before the single transient-network retry
const networkRetryDelay = 2 * time.Second

// Waiter wraps API calls and recovers from the API's rate limit contract.
// On a rate limit error it suspends the calling flow until the reported
// reset time (plus a safety margin) and then retries the same request.
// That loop is unbounded: the API guarantees the limit eventually resets.
// Transient network errors are retried a bounded number of times, then
// surfaced. All other errors surface unchanged.
type Waiter struct {
	// Margin is added on top of the API-reported reset time
	Margin time.Duration
	// NetworkRetries bounds retries for transient network errors
	NetworkRetries int

	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// NewWaiter creates a waiter with the given safety margin and network
// retry budget
func NewWaiter(margin time.Duration, networkRetries int, log logger.Logger) *Waiter {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Waiter{
		Margin:         margin,
		NetworkRetries: networkRetries,
		logger:         log,
		sleep:          sleepContext,
		now:            time.Now,
	}
}

// Do executes op, waiting out rate limits and retrying transient network
// failures. Returns the first non-recoverable error, or nil on success.
func (w *Waiter) Do(ctx context.Context, op Operation) error {
	networkAttempts := 0

	for {
		err := op()
		if err == nil {
			return nil
		}

		switch {
		case errors.IsRateLimit(err):
			resetAt := errors.RateLimitReset(err)
			wait := resetAt.Sub(w.now()) + w.Margin
			if wait < 0 {
				wait = w.Margin
			}

			w.logger.WarnWithFields("rate limited, suspending until reset", map[string]interface{}{
				"reset_at": resetAt,
				"wait":     wait,
			})

			if err := w.sleep(ctx, wait); err != nil {
				return err
			}

			w.logger.Info("rate limit window elapsed, resuming")

		case errors.IsType(err, errors.ErrorTypeNetwork) && networkAttempts < w.NetworkRetries:
			networkAttempts++
			w.logger.WarnWithFields("transient network error, retrying", map[string]interface{}{
				"attempt": networkAttempts,
				"error":   err.Error(),
			})

			if err := w.sleep(ctx, networkRetryDelay); err != nil {
				return err
			}

		default:
			return err
		}
	}
}

// sleepContext sleeps for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
