package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock is a ratelimit.Clock whose time only moves when told to
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func TestTryAcquireDrainsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("acquire %d should succeed", i+1)
		}
	}
	if rl.TryAcquire() {
		t.Fatal("bucket should be empty after burst")
	}
}

func TestRefillAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	rl := newRateLimiter(2, time.Second, clock)

	rl.TryAcquire()
	rl.TryAcquire()
	if rl.Available() != 0 {
		t.Fatalf("expected 0 tokens, got %d", rl.Available())
	}

	clock.Sleep(1500 * time.Millisecond)
	if got := rl.Available(); got != 1 {
		t.Fatalf("expected 1 token after 1.5s, got %d", got)
	}

	clock.Sleep(10 * time.Second)
	if got := rl.Available(); got != 2 {
		t.Fatalf("refill must cap at burst, got %d", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	rl.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	rl.TryAcquire()

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, expected to block for a refill", elapsed)
	}
}

func TestNewPerMinuteRate(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	rl := newRateLimiter(1, time.Minute/120, clock)
	rl.TryAcquire()

	clock.Sleep(500 * time.Millisecond)
	if !rl.TryAcquire() {
		t.Error("120 rpm should refill one token every 500ms")
	}
	if NewPerMinute(120, 4).Available() != 4 {
		t.Error("new limiter should start with a full burst")
	}
}

func TestNilLimiterIsUnlimited(t *testing.T) {
	var rl *RateLimiter
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter Wait: %v", err)
	}
	if !rl.TryAcquire() {
		t.Fatal("nil limiter should always acquire")
	}
	if NewPerMinute(0, 5) != nil {
		t.Fatal("rpm 0 should disable limiting")
	}
}
