package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSemaphore_LimitsPermits(t *testing.T) {
	s := NewSemaphore(2)
	ctx := context.Background()

	if !s.Acquire(ctx) || !s.Acquire(ctx) {
		t.Fatal("expected two permits")
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if s.Acquire(short) {
		t.Fatal("third Acquire should block until ctx expires")
	}

	s.Release()
	if !s.Acquire(ctx) {
		t.Fatal("Acquire after Release should succeed")
	}
}

func TestSemaphore_NonPositiveCount(t *testing.T) {
	if got := NewSemaphore(0).Capacity(); got != 1 {
		t.Errorf("Capacity() = %d, want 1", got)
	}
}

func TestPool_RunsAllAndCollectsErrors(t *testing.T) {
	p := NewPool(3)
	boom := errors.New("boom")

	var ran atomic.Int32
	errs := p.Run(context.Background(), 10, func(_ context.Context, i int) error {
		ran.Add(1)
		if i%4 == 0 {
			return boom
		}
		return nil
	}, nil)

	if ran.Load() != 10 {
		t.Errorf("ran %d jobs, want 10", ran.Load())
	}
	if len(errs) != 10 {
		t.Fatalf("len(errs) = %d, want 10", len(errs))
	}
	for i, err := range errs {
		want := i%4 == 0
		if (err != nil) != want {
			t.Errorf("errs[%d] = %v, want failure=%v", i, err, want)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(2)

	var inFlight, peak atomic.Int32
	p.Run(context.Background(), 8, func(_ context.Context, _ int) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}, nil)

	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestPool_CancelStopsDispatch(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	errs := p.Run(ctx, 5, func(_ context.Context, i int) error {
		if i == 0 {
			cancel()
		}
		return nil
	}, nil)

	if errs[0] != nil {
		t.Errorf("started job should finish normally, got %v", errs[0])
	}
	for i := 1; i < 5; i++ {
		if !errors.Is(errs[i], context.Canceled) {
			t.Errorf("errs[%d] = %v, want context.Canceled", i, errs[i])
		}
	}
}

func TestPool_DoneCallbackSerialized(t *testing.T) {
	p := NewPool(4)

	var mu sync.Mutex
	seen := map[int]bool{}
	p.Run(context.Background(), 20, func(_ context.Context, _ int) error { return nil }, func(r Result) {
		mu.Lock()
		seen[r.Index] = true
		mu.Unlock()
	})

	if len(seen) != 20 {
		t.Errorf("done called for %d jobs, want 20", len(seen))
	}
}

func TestProgressPercent(t *testing.T) {
	if got := (Progress{}).Percent(); got != 0 {
		t.Errorf("empty Percent() = %v", got)
	}
	if got := (Progress{Complete: 3, Failed: 1, Total: 8}).Percent(); got != 50 {
		t.Errorf("Percent() = %v, want 50", got)
	}
}
