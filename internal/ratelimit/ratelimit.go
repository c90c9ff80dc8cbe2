// Package ratelimit implements the fixed-window throttle shared by the search
// and fetch paths.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"webscout/internal/model"
)

// ErrInvalidArgument is returned when a limiter is built with a non-positive
// limit or interval.
var ErrInvalidArgument = errors.New("invalid argument")

// Limiter grants at most limit requests per interval. The window starts on
// the first request after a reset, not at construction, so it follows real
// traffic. Waiting callers hold the lock for the whole wait, which keeps
// Acquire calls served one at a time and in arrival order.
type Limiter struct {
	limit    int
	interval time.Duration

	mu          sync.Mutex
	requests    int
	windowStart time.Time

	now func() time.Time
}

// New creates a Limiter allowing limit requests per interval.
func New(limit int, interval time.Duration) (*Limiter, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidArgument, interval)
	}
	return &Limiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
		now:         time.Now,
	}, nil
}

// Acquire returns immediately while the current window has budget left.
// Otherwise it blocks until the window has elapsed and then opens a new
// window holding this request. It returns ctx.Err() if ctx ends first.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.windowStart)
	if elapsed >= l.interval {
		l.requests = 0
		l.windowStart = now
	}

	if l.requests < l.limit {
		if l.requests == 0 {
			l.windowStart = now
		}
		l.requests++
		return nil
	}

	wait := l.interval - elapsed
	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
	}

	l.requests = 1
	l.windowStart = l.now()
	return nil
}

// Status reports the current counters for diagnostics.
func (l *Limiter) Status() model.RateLimitStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.RateLimitStatus{
		Requests: l.requests,
		Limit:    l.limit,
		Interval: l.interval,
	}
}
