package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        4 * time.Millisecond,
	BackoffMultiple: 2.0,
}

func TestRetrySucceedsAfterRetryableError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, testRequestContext(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &TransportError{Category: "server_error", Retryable: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"non-retryable transport", &TransportError{Category: "unauthorized"}},
		{"verification", &VerificationError{Name: "x", Step: ErrSpellCheckFailed}},
		{"plain", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastRetry, testRequestContext(), func(context.Context) error {
				calls++
				return tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestRetryGivesUp(t *testing.T) {
	want := &TransportError{Category: "rate_limit", Retryable: true}
	calls := 0
	err := Retry(context.Background(), fastRetry, testRequestContext(), func(context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("got %v", err)
	}
	if calls != fastRetry.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, fastRetry.MaxAttempts)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	err := Retry(ctx, cfg, testRequestContext(), func(context.Context) error {
		cancel()
		return &TransportError{Category: "server_error", Retryable: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffMultiple: 2}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := calculateBackoff(i+1, cfg); got != w {
			t.Errorf("attempt %d: got %v, want %v", i+1, got, w)
		}
	}
}
