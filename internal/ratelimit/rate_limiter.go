// rate_limiter.go - Outbound rate limiting to stay under Gemini API quotas

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/ratelimit"
)

// RateLimiter wraps a token bucket shared by all outbound Gemini calls
type RateLimiter struct {
	bucket *ratelimit.Bucket
}

// NewRateLimiter creates a new rate limiter
// maxTokens: bucket size (burst)
// refillRate: time between token refills
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return newRateLimiter(maxTokens, refillRate, nil)
}

func newRateLimiter(maxTokens int, refillRate time.Duration, clock ratelimit.Clock) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Nanosecond
	}
	if clock == nil {
		return &RateLimiter{bucket: ratelimit.NewBucket(refillRate, int64(maxTokens))}
	}
	return &RateLimiter{bucket: ratelimit.NewBucketWithClock(refillRate, int64(maxTokens), clock)}
}

// NewPerMinute builds a limiter allowing rpm requests per minute with the given burst.
// rpm <= 0 returns nil, which Wait treats as unlimited.
func NewPerMinute(rpm, burst int) *RateLimiter {
	if rpm <= 0 {
		return nil
	}
	return NewRateLimiter(burst, time.Minute/time.Duration(rpm))
}

// TryAcquire takes a token if one is available without blocking
func (rl *RateLimiter) TryAcquire() bool {
	if rl == nil {
		return true
	}
	return rl.bucket.TakeAvailable(1) == 1
}

// Wait blocks until a token is available or ctx is done. When ctx carries a
// deadline that the wait would overrun, no token is taken.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var wait time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		var taken bool
		wait, taken = rl.bucket.TakeMaxDuration(1, time.Until(deadline))
		if !taken {
			return fmt.Errorf("rate limiter: wait exceeds deadline: %w", context.DeadlineExceeded)
		}
	} else {
		wait = rl.bucket.Take(1)
	}
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Available reports the current number of tokens
func (rl *RateLimiter) Available() int {
	if rl == nil {
		return 0
	}
	return int(max(rl.bucket.Available(), 0))
}
