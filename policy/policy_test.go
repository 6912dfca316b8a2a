package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arborist-dev/cellgraph/execerr"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsZeroMaxAttempts(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 0}
	require.ErrorIs(t, rp.Validate(), execerr.ErrInvalidRetryPolicy)
}

func TestValidateRejectsInvertedDelayBounds(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 100 * time.Millisecond}
	require.ErrorIs(t, rp.Validate(), execerr.ErrInvalidRetryPolicy)
}

func TestShouldRetryRespectsMaxAttemptsAndPredicate(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 2, Retryable: func(error) bool { return true }}
	require.True(t, rp.ShouldRetry(0, errors.New("boom")))
	require.False(t, rp.ShouldRetry(1, errors.New("boom")))
}

func TestShouldRetryFalseWithoutPredicate(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 5}
	require.False(t, rp.ShouldRetry(0, errors.New("boom")))
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 10, BaseDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond}
	for attempt := 0; attempt < 6; attempt++ {
		d := rp.Backoff(attempt)
		require.LessOrEqual(t, d, 30*time.Millisecond)
	}
}

func TestTimeoutWithTimeoutZeroMeansUnlimited(t *testing.T) {
	tm := Timeout{}
	ctx, cancel := tm.WithTimeout(context.Background())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	require.False(t, hasDeadline)
}

func TestTimeoutWithTimeoutBoundsContext(t *testing.T) {
	tm := Timeout{Duration: 50 * time.Millisecond}
	ctx, cancel := tm.WithTimeout(context.Background())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)
}
