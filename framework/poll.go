package framework

import (
	"context"
	"fmt"
	"time"
)

const DefaultPollInterval = time.Millisecond * 100

// TimeoutError is returned by Poll when the condition was never satisfied in time.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	LastErr   error
}

func (e *TimeoutError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("timed out after %s waiting for %s (last error: %s)", e.Timeout, e.Condition, e.LastErr)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// Predicate reports whether a condition holds. An error means the condition could not be
// evaluated this time; Poll keeps trying and reports the last such error on timeout, not
// counting errors from attempts cut short by the timeout itself.
type Predicate func(ctx context.Context) (bool, error)

// Poll evaluates the predicate immediately and then every interval until it returns true,
// the timeout elapses, or ctx is done. The predicate's context is bounded by the timeout.
func Poll(ctx context.Context, condition string, timeout, interval time.Duration, predicate Predicate) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := predicate(pollCtx)
		if err == nil && ok {
			return nil
		}
		if err != nil && pollCtx.Err() == nil {
			lastErr = err
		}
		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &TimeoutError{Condition: condition, Timeout: timeout, LastErr: lastErr}
		case <-ticker.C:
		}
	}
}

// Consistently evaluates the predicate every interval for the whole period, and fails as
// soon as it returns false or an error.
func Consistently(ctx context.Context, condition string, period, interval time.Duration, predicate Predicate) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.NewTimer(period)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := predicate(ctx)
		if err != nil {
			return fmt.Errorf("could not check %s: %w", condition, err)
		}
		if !ok {
			return fmt.Errorf("expected %s to hold for %s, but it did not", condition, period)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-ticker.C:
		}
	}
}
