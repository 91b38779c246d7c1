package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestIntervalLimiterSpacesCalls(t *testing.T) {
	const interval = 20 * time.Millisecond
	const callers = 4

	l := NewInterval(interval)

	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(context.Background()); err != nil {
				t.Errorf("Wait() error = %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		// Allow a little scheduling slack below the nominal interval.
		if gap < interval-5*time.Millisecond {
			t.Errorf("gap %d = %v, want >= %v", i, gap, interval)
		}
	}
}

func TestIntervalLimiterWaitHonorsCancel(t *testing.T) {
	l := NewInterval(time.Hour)

	// Drain the single burst token.
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() should fail when the context expires before the next slot")
	}
}

func TestNoopNeverBlocks(t *testing.T) {
	start := time.Now()
	for range 100 {
		if err := (Noop{}).Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Noop limiter should not block")
	}
}

func TestNoopPropagatesCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Noop{}).Wait(ctx); err == nil {
		t.Error("Wait() should return the context error when already canceled")
	}
}
