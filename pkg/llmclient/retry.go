package llmclient

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy is the exponential-backoff-with-jitter schedule for transient
// provider failures, adapted from haasonsaas-nexus's internal/backoff
// package.
type RetryPolicy struct {
	BaseDelay  time.Duration
	MaxJitter  time.Duration
	MaxRetries int
}

// DefaultRetryPolicy returns 500ms·2^k + jitter∈[0,250ms], max 3 retries.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  500 * time.Millisecond,
		MaxJitter:  250 * time.Millisecond,
		MaxRetries: 3,
	}
}

// delay returns the backoff duration for the given zero-based attempt.
func (p RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay << attempt
	if p.MaxJitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(p.MaxJitter)+1))
}

// Wait sleeps for the backoff duration of attempt, respecting ctx
// cancellation. Returns ctx.Err() if the context ends first.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
