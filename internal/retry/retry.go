// Package retry provides bounded retry with exponential backoff for
// transient failures, used by the forge client for flaky API calls.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int

	// Delay is the wait before the second attempt. It doubles after each
	// failure, capped at MaxDelay.
	Delay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultPolicy suits short API calls: three tries over a few seconds.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		MaxDelay: 4 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks an error as not worth retrying. Do returns the wrapped
// error immediately when fn produces one.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to p.Attempts times, backing off between failures. It stops
// early when fn succeeds, when fn returns a Permanent error, or when ctx is
// done. The returned error is the last one fn produced, unwrapped from its
// Permanent marker if it carried one.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	delay := p.Delay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= p.Attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		if p.MaxDelay > 0 && delay*2 > p.MaxDelay {
			delay = p.MaxDelay
		} else {
			delay *= 2
		}
	}
}
