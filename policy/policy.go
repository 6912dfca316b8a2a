// Package policy implements per-operation timeout and retry configuration
// for long-running operations, adapted from the teacher's NodePolicy /
// RetryPolicy / timeout-precedence machinery.
package policy

import (
	"context"
	"math/rand"
	"time"

	"github.com/arborist-dev/cellgraph/execerr"
)

// RetryPolicy configures automatic retry of a failed long-running
// operation body: how many attempts to allow, the exponential backoff
// bounds between them, and which errors are worth retrying at all.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts including the first.
	// Must be >= 1; 1 means no retries.
	MaxAttempts int

	// BaseDelay and MaxDelay bound the exponential backoff: delay =
	// min(BaseDelay*2^attempt, MaxDelay) + jitter(0, BaseDelay).
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Retryable decides whether an error is worth retrying. A nil
	// Retryable treats every error as non-retryable, matching the
	// teacher's "no predicate means no retries" default.
	Retryable func(error) bool
}

// Validate reports execerr.ErrInvalidRetryPolicy if the policy's bounds
// are self-contradictory.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return execerr.ErrInvalidRetryPolicy
	}
	if rp.MaxDelay > 0 && rp.BaseDelay > 0 && rp.MaxDelay < rp.BaseDelay {
		return execerr.ErrInvalidRetryPolicy
	}
	return nil
}

// ShouldRetry reports whether attempt (0-based, already-made attempts)
// should be followed by another, given err from the most recent one.
func (rp *RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil {
		return false
	}
	if attempt+1 >= rp.MaxAttempts {
		return false
	}
	if rp.Retryable == nil {
		return false
	}
	return rp.Retryable(err)
}

// Backoff computes the delay before the given (0-based) retry attempt,
// using exponential backoff with jitter to avoid thundering-herd retries
// when many operations fail at once.
func (rp *RetryPolicy) Backoff(attempt int) time.Duration {
	base := rp.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base * (1 << attempt)
	if rp.MaxDelay > 0 && delay > rp.MaxDelay {
		delay = rp.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(base))) // #nosec G404 -- retry timing jitter, not security-sensitive
	return delay + jitter
}

// Timeout bounds how long a single attempt of a long-running operation
// body may run before it is canceled.
type Timeout struct {
	// Duration is the per-attempt time budget. Zero means unlimited.
	Duration time.Duration
}

// WithTimeout returns a derived context bounded by t, and a cancel func the
// caller must invoke once the attempt finishes (matching
// context.WithTimeout's own contract). If t.Duration is zero, ctx is
// returned unmodified with a no-op cancel.
func (t Timeout) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.Duration <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.Duration)
}
