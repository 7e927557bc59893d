// retry.go - Caller-side retry with exponential backoff.
//
// The pipeline stages never retry on their own; request handlers that want
// resilience wrap Pipeline.Process with Retry.

package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/common"
)

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults for retry behavior
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        8 * time.Second,
	BackoffMultiple: 2.0,
}

// Retry runs fn until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. Only retryable *TransportError values are retried.
func Retry(ctx context.Context, config RetryConfig, reqCtx *common.RequestContext, fn func(ctx context.Context) error) error {
	attempts := max(config.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			reqCtx.LogInfo("Retry attempt %d/%d", attempt, attempts)
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				reqCtx.LogInfo("✅ Retry succeeded on attempt %d", attempt)
			}
			return nil
		}
		lastErr = err

		var transportErr *TransportError
		if !errors.As(err, &transportErr) || !transportErr.Retryable {
			return err
		}

		reqCtx.LogError("Attempt %d/%d failed: %s", attempt, attempts, transportErr.Error())

		if attempt >= attempts {
			break
		}

		delay := calculateBackoff(attempt, config)

		// Rate limit - use longer delay
		if transportErr.Category == "rate_limit" {
			delay = delay * 2
			reqCtx.LogWarning("Rate limit hit, waiting %v before retry", delay)
		} else {
			reqCtx.LogInfo("Waiting %v before retry", delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry wait: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	if attempts == 1 {
		return lastErr
	}
	reqCtx.LogError("❌ All %d attempts failed, last error: %v", attempts, lastErr)
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// calculateBackoff computes exponential backoff delay
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt-1))

	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	return time.Duration(delay)
}
