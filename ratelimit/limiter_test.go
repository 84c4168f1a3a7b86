package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_WindowCeiling(t *testing.T) {
	const (
		requests = 10
		window   = 500 * time.Millisecond
		workers  = 25
	)

	limiter := New(requests, window)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Acquire(ctx))
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, stamps, workers)
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	// No window-length interval may contain more than the configured budget.
	for i := range stamps {
		count := 1
		for j := i + 1; j < len(stamps); j++ {
			if stamps[j].Sub(stamps[i]) < window {
				count++
			}
		}
		assert.LessOrEqual(t, count, requests,
			"window starting at acquisition %d admitted %d requests", i, count)
	}

	// The whole run cannot finish faster than the spacing allows.
	elapsed := stamps[len(stamps)-1].Sub(stamps[0])
	minimum := time.Duration(workers-1) * (window / requests)
	assert.GreaterOrEqual(t, elapsed, minimum*9/10)
}

func TestLimiter_AcquireCanceled(t *testing.T) {
	limiter := New(1, time.Minute)
	ctx := context.Background()

	// First slot is immediate.
	require.NoError(t, limiter.Acquire(ctx))

	// Second would wait a minute; cancellation must unblock it.
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- limiter.Acquire(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not unblock on cancellation")
	}
}

func TestLimiter_SequentialSpacing(t *testing.T) {
	limiter := New(5, 250*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Acquire(ctx))
	}
	elapsed := time.Since(start)

	// First acquisition is free, the next three wait out their spacing
	// intervals (at least 250ms/4 each).
	assert.GreaterOrEqual(t, elapsed, 170*time.Millisecond)
}
