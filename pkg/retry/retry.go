// Package retry runs store lookups with bounded exponential backoff.
//
// Only errors wrapped with [Retryable] are retried; anything else (a missing
// package, a validation failure) is returned immediately. Every wait honours
// the caller's context, so a retry loop never outlives its deadline.
package retry

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (timeouts, connection resets, unavailable backends)
// with this type so that [Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. It returns nil for a nil error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err (or anything it wraps) is a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy describes how many times to retry and how long to wait.
type Policy struct {
	Retries int           // retries after the first attempt
	Delay   time.Duration // initial delay, doubled after each failure
	// OnRetry is called before each wait with the 1-based retry number.
	OnRetry func(retry int, err error)
}

// Do executes fn once plus up to p.Retries retries with exponential backoff.
// It returns the last error if all attempts fail, or ctx.Err() if the context
// ends while waiting.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	attempts := max(p.Retries, 0) + 1
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(ctx); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if p.OnRetry != nil {
				p.OnRetry(i+1, lastErr)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
