package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("u1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	rl.Allow("u1")
	if rl.Allow("u1") {
		t.Error("u1 should be exhausted")
	}
	if !rl.Allow("u2") {
		t.Error("u2 should be independent and allowed")
	}
}

func TestKeyedRateLimiter_Refill(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newLimiter(2, 1, time.Minute, func() time.Time { return now })

	if !rl.Allow("u1") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("u1") {
		t.Fatal("second request should be limited")
	}

	now = now.Add(500 * time.Millisecond)
	if !rl.Allow("u1") {
		t.Error("token should refill after 1/rps")
	}
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("u1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "u1"); err == nil {
		t.Error("Wait() should fail when context canceled")
	}
}

func TestKeyedRateLimiter_EvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newLimiter(1, 1, time.Minute, func() time.Time { return now })

	rl.Allow("idle")
	now = now.Add(45 * time.Second)
	rl.Allow("active")
	now = now.Add(30 * time.Second)

	if got := rl.evict(); got != 1 {
		t.Errorf("evict() = %d, want 1", got)
	}
	if got := rl.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestKeyedRateLimiter_RetryAfter(t *testing.T) {
	tests := []struct {
		rps  float64
		want int
	}{
		{20, 1},
		{1, 1},
		{0.25, 4},
	}
	for _, tt := range tests {
		rl := newLimiter(tt.rps, 1, time.Minute, time.Now)
		if got := rl.RetryAfter(); got != tt.want {
			t.Errorf("RetryAfter() at %g rps = %d, want %d", tt.rps, got, tt.want)
		}
	}
}
