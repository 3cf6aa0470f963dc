package transport

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy parameterizes the exponential backoff applied to retryable
// failures.
type RetryPolicy struct {
	// MaxRetries is the number of re-attempts after the first try; the
	// total attempt count is MaxRetries+1.
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// OnRetry, when set, is called before each backoff wait with the error
	// being retried, the computed delay, and the attempt number (starting
	// at 1 for the first re-attempt).
	OnRetry func(err error, delay time.Duration, attempt int)
}

// DefaultRetryPolicy mirrors the facilitator's recommended schedule:
// three retries starting at one second, doubling, capped at thirty.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2
	}
	return p
}

// Retry runs op until it succeeds, fails with a non-retryable error, or
// exhausts the policy's attempts, and then returns the last result. A
// rate-limit error carrying a server-provided delay overrides the
// geometric schedule for that wait. The backoff sleep honors ctx, so a
// caller can abandon the loop between attempts.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	policy = policy.withDefaults()
	delay := policy.InitialDelay

	var result T
	var err error
	for attempt := 0; ; attempt++ {
		result, err = op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt == policy.MaxRetries {
			return result, err
		}

		wait := min(delay, policy.MaxDelay)
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindRateLimit && apiErr.RetryAfter > 0 {
			wait = min(apiErr.RetryAfter, policy.MaxDelay)
		}

		if policy.OnRetry != nil {
			policy.OnRetry(err, wait, attempt+1)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}

		// The next geometric step grows from the delay just served, so a
		// retry-after override also rebases the schedule.
		delay = time.Duration(float64(wait) * policy.Multiplier)
	}
}
