package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"voicesite/middleware/ratelimit/domain"
)

// fakeClock permite avançar o tempo sem sleep.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStore_AllowsUpToMaxThenDenies(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(5, time.Minute, WithClock(clk.Now))

	for i := 1; i <= 5; i++ {
		dec := s.CheckAndConsume("10.0.0.1")
		if !dec.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if dec.Remaining != 5-i {
			t.Fatalf("expected Remaining=%d on request %d, got %d", 5-i, i, dec.Remaining)
		}
	}

	dec := s.CheckAndConsume("10.0.0.1")
	if dec.Allowed {
		t.Fatalf("expected 6th request in the same window to be denied")
	}
	if dec.RetryAfter != time.Minute {
		t.Fatalf("expected RetryAfter=1m with no time elapsed, got %s", dec.RetryAfter)
	}
}

func TestStore_DeniedRequestsAreNotCounted(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(2, time.Minute, WithClock(clk.Now))

	for i := 0; i < 10; i++ {
		s.CheckAndConsume("k")
	}

	ent, ok := s.Lookup("k")
	if !ok {
		t.Fatalf("expected entry for k")
	}
	if ent.Count != 2 {
		t.Fatalf("expected Count to stay at max=2, got %d", ent.Count)
	}
}

func TestStore_ResetsAfterWindowElapses(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(5, time.Minute, WithClock(clk.Now))

	for i := 0; i < 6; i++ {
		s.CheckAndConsume("10.0.0.1")
	}

	clk.Advance(30 * time.Second)
	dec := s.CheckAndConsume("10.0.0.1")
	if dec.Allowed {
		t.Fatalf("expected still denied inside the window")
	}
	if dec.RetryAfter != 30*time.Second {
		t.Fatalf("expected RetryAfter=30s, got %s", dec.RetryAfter)
	}

	clk.Advance(31 * time.Second)
	dec = s.CheckAndConsume("10.0.0.1")
	if !dec.Allowed {
		t.Fatalf("expected allowed after window elapsed")
	}

	ent, _ := s.Lookup("10.0.0.1")
	if ent.Count != 1 {
		t.Fatalf("expected count reset to 1, got %d", ent.Count)
	}
	if !ent.WindowStart.Equal(clk.Now()) {
		t.Fatalf("expected window to restart at %s, got %s", clk.Now(), ent.WindowStart)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	s := NewStore(1, time.Minute)

	if !s.CheckAndConsume("a").Allowed {
		t.Fatalf("expected a allowed")
	}
	if !s.CheckAndConsume("b").Allowed {
		t.Fatalf("expected b allowed (separate window)")
	}
	if s.CheckAndConsume("a").Allowed {
		t.Fatalf("expected second a denied")
	}
}

func TestStore_CleanupRemovesOnlyExpiredEntries(t *testing.T) {
	clk := newFakeClock()
	var hookRemoved, hookRemaining int
	s := NewStore(5, time.Minute, WithClock(clk.Now), WithCleanupEvery(0), WithCleanupHook(func(removed, remaining int) {
		hookRemoved, hookRemaining = removed, remaining
	}))

	s.CheckAndConsume("old")
	clk.Advance(45 * time.Second)
	s.CheckAndConsume("fresh")
	clk.Advance(20 * time.Second)

	removed := s.Cleanup()
	if removed != 1 {
		t.Fatalf("expected 1 removed entry, got %d", removed)
	}
	if _, ok := s.Lookup("old"); ok {
		t.Fatalf("expected old entry to be removed")
	}
	if _, ok := s.Lookup("fresh"); !ok {
		t.Fatalf("expected fresh entry to survive")
	}
	if hookRemoved != 1 || hookRemaining != 1 {
		t.Fatalf("expected hook(1, 1), got (%d, %d)", hookRemoved, hookRemaining)
	}
}

func TestStore_JanitorSweepsAndStops(t *testing.T) {
	swept := make(chan int, 16)
	s := NewStore(5, time.Millisecond,
		WithCleanupEvery(5*time.Millisecond),
		WithCleanupHook(func(removed, _ int) {
			select {
			case swept <- removed:
			default:
			}
		}),
	)
	s.CheckAndConsume(domain.Key("k"))

	ctx, cancel := context.WithCancel(context.Background())
	s.StartJanitor(ctx)

	deadline := time.After(time.Second)
	for s.Len() != 0 {
		select {
		case <-swept:
		case <-deadline:
			cancel()
			t.Fatalf("timeout waiting janitor to remove expired entry")
		}
	}
	cancel()
}

func TestStore_ConcurrentCheckAndConsumeNeverExceedsMax(t *testing.T) {
	s := NewStore(5, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.CheckAndConsume("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Fatalf("expected exactly 5 allowed under concurrency, got %d", allowed)
	}
}
