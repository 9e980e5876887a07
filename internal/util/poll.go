package util

import (
	"context"
	"time"

	"nearby/internal/errors"
)

// ErrPollExhausted is returned by Poll when the condition never held.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// PollOptions bounds a Poll call.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poll evaluates check once per interval, starting one interval after the
// call, until it reports true or MaxAttempts checks have been made. It
// returns the number of checks performed. The condition is never evaluated
// concurrently with itself.
func Poll(ctx context.Context, opts PollOptions, check func(context.Context) bool) (int, error) {
	if opts.Interval <= 0 {
		return 0, errors.Errorf("poll interval must be positive, got %s", opts.Interval)
	}
	if opts.MaxAttempts <= 0 {
		return 0, errors.Errorf("poll max attempts must be positive, got %d", opts.MaxAttempts)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return attempt - 1, errors.WithStack(ctx.Err())
		case <-ticker.C:
		}

		if check(ctx) {
			return attempt, nil
		}

		if attempt >= opts.MaxAttempts {
			return attempt, ErrPollExhausted
		}
	}
}
