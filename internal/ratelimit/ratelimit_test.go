package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_Allow(t *testing.T) {
	tests := []struct {
		name      string
		perMinute int
		burst     int
		calls     int
		wantPass  int
	}{
		{
			name:      "burst allows initial requests",
			perMinute: 60,
			burst:     3,
			calls:     3,
			wantPass:  3,
		},
		{
			name:      "exceeding burst blocks",
			perMinute: 60,
			burst:     2,
			calls:     5,
			wantPass:  2,
		},
		{
			name:      "zero rate disables limiting",
			perMinute: 0,
			burst:     1,
			calls:     50,
			wantPass:  50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := PerMinute(tt.perMinute, tt.burst)

			passed := 0
			for range tt.calls {
				if l.Allow("api.hardcover.app") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestHostLimiter_Wait(t *testing.T) {
	l := PerMinute(600, 1) // one token every 100ms

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := l.Wait(ctx, "api.hardcover.app"); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("first Wait() should be immediate")
	}

	start = time.Now()
	if err := l.Wait(ctx, "api.hardcover.app"); err != nil {
		t.Fatalf("second Wait() failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("second Wait() took %v, want ~100ms", elapsed)
	}
}

func TestHostLimiter_WaitContextCanceled(t *testing.T) {
	l := PerMinute(1, 1)
	l.Allow("api.hardcover.app")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "api.hardcover.app"); err == nil {
		t.Error("Wait() should fail when the context ends before a token is available")
	}
}

func TestHostLimiter_IndependentHosts(t *testing.T) {
	l := PerMinute(1, 1)

	l.Allow("api.hardcover.app")
	if l.Allow("api.hardcover.app") {
		t.Error("api.hardcover.app should be exhausted")
	}
	if !l.Allow("127.0.0.1:8080") {
		t.Error("a second host should have its own budget")
	}
}
