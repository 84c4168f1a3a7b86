// Package ratelimit enforces a global ceiling on outbound requests shared by
// all collection workers.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter meters request slots across concurrent workers. Acquisitions are
// spaced evenly so that at most the configured number of requests proceeds
// within any window-length interval, wherever that interval starts. The
// budget can never go negative: a caller over budget blocks, it is never
// refused.
//
// Safe for concurrent use.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a Limiter allowing the given number of requests per window.
// requests must be > 0 and window must be positive.
func New(requests int, window time.Duration) *Limiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	// Burst of one: even spacing rather than an up-front burst keeps the
	// per-window ceiling strict no matter where the window starts.
	//
	// n grants spaced window/(n-1) apart span a whole window, so a
	// window-length interval holds at most n of them with a full spacing
	// interval of slack. Spacing at exactly window/n would put the n+1th
	// grant right on the window boundary, where scheduling jitter can pull
	// it inside.
	interval := window
	if requests > 1 {
		interval = window / time.Duration(requests-1)
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Acquire blocks until a request slot is available, then reserves it.
// Returns early with the context's error if ctx is canceled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
