// Package ratelimit throttles outbound API requests with one token bucket per remote host.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter hands out an independent token bucket per host.
// A single sync run talks to one host, but tests and alternate endpoints
// must not share a budget.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// PerMinute creates a limiter allowing n requests per minute per host, with
// up to burst requests available immediately. n <= 0 disables limiting.
func PerMinute(n, burst int) *HostLimiter {
	limit := rate.Inf
	if n > 0 {
		limit = rate.Every(time.Minute / time.Duration(n))
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Allow reports whether a request to host may proceed now, consuming a token if so.
func (l *HostLimiter) Allow(host string) bool {
	return l.limiter(host).Allow()
}

// Wait blocks until a request to host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.limiter(host).Wait(ctx)
}

func (l *HostLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = limiter
	}
	return limiter
}
