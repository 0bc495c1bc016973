// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit enforces a minimum interval between outbound calls to
// the same source type. One Limiter is shared by every concurrent pipeline
// run: calls targeting the same source serialize through its token bucket,
// calls targeting different sources never block each other.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// Limiter is a per-source-type throttle. The zero value is not usable;
// construct with New.
type Limiter struct {
	mu      sync.Mutex
	buckets map[types.SourceType]*rate.Limiter
}

// New builds a Limiter from a source-to-interval map. Sources absent from
// the map are never throttled. intervals may be nil.
func New(intervals map[types.SourceType]time.Duration) *Limiter {
	l := &Limiter{buckets: make(map[types.SourceType]*rate.Limiter)}
	for st, interval := range intervals {
		l.SetRateLimit(st, interval)
	}
	return l
}

// SetRateLimit reconfigures the minimum spacing for st at runtime. An
// interval of zero or less removes the throttle for that source.
func (l *Limiter) SetRateLimit(st types.SourceType, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if interval <= 0 {
		delete(l.buckets, st)
		return
	}
	if b, ok := l.buckets[st]; ok {
		b.SetLimit(rate.Every(interval))
		return
	}
	// Burst 1: a fresh bucket admits the first call immediately and spaces
	// every later call by at least the interval.
	l.buckets[st] = rate.NewLimiter(rate.Every(interval), 1)
}

// WaitIfNeeded blocks until at least the configured interval has elapsed
// since the last admitted call to st, then records the new call time. It
// returns early with ctx.Err() if the context is cancelled while waiting;
// unthrottled sources return immediately.
func (l *Limiter) WaitIfNeeded(ctx context.Context, st types.SourceType) error {
	l.mu.Lock()
	b := l.buckets[st]
	l.mu.Unlock()

	if b == nil {
		return nil
	}
	return b.Wait(ctx)
}

// Interval returns the currently configured spacing for st, zero when the
// source is unthrottled.
func (l *Limiter) Interval(st types.SourceType) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[st]
	if !ok {
		return 0
	}
	limit := b.Limit()
	if limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}
