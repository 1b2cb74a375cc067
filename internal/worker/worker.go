// Package worker provides a bounded pool for running independent jobs in parallel.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Semaphore provides a counting semaphore for controlling concurrency.
// It bounds how many external processes run at once.
type Semaphore struct {
	permits chan struct{}
}

// NewSemaphore creates a new semaphore with the given number of permits.
func NewSemaphore(count int) *Semaphore {
	if count <= 0 {
		count = 1
	}
	s := &Semaphore{
		permits: make(chan struct{}, count),
	}
	// Pre-fill the permits
	for i := 0; i < count; i++ {
		s.permits <- struct{}{}
	}
	return s
}

// Acquire takes a permit, returning false if ctx is done first.
func (s *Semaphore) Acquire(ctx context.Context) bool {
	// Prefer cancellation when both are ready.
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-s.permits:
		if ctx.Err() != nil {
			s.Release()
			return false
		}
		return true
	case <-ctx.Done():
		return false
	}
}

// Release returns a permit to the semaphore.
func (s *Semaphore) Release() {
	select {
	case s.permits <- struct{}{}:
	default:
		// Semaphore is full, this shouldn't happen in normal use
	}
}

// Capacity returns the total number of permits.
func (s *Semaphore) Capacity() int {
	return cap(s.permits)
}

// DefaultSize is the pool size used when none is configured.
func DefaultSize() int {
	return runtime.NumCPU()
}

// Pool runs jobs with bounded parallelism.
type Pool struct {
	sem *Semaphore
}

// NewPool creates a pool with size workers; size <= 0 means DefaultSize.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	return &Pool{sem: NewSemaphore(size)}
}

// Size returns the number of concurrent jobs the pool allows.
func (p *Pool) Size() int {
	return p.sem.Capacity()
}

// Result is the outcome of one job.
type Result struct {
	Index int
	Err   error
}

// Run calls fn for every index in [0, n) and waits for all of them.
// A failing job does not stop its siblings. When ctx is cancelled, jobs
// that have not started are reported with ctx.Err(); jobs already running
// are left to finish. The returned slice is indexed by job.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error, done func(Result)) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	var mu sync.Mutex

	report := func(i int, err error) {
		errs[i] = err
		if done != nil {
			mu.Lock()
			done(Result{Index: i, Err: err})
			mu.Unlock()
		}
	}

	for i := 0; i < n; i++ {
		if !p.sem.Acquire(ctx) {
			for j := i; j < n; j++ {
				report(j, ctx.Err())
			}
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer p.sem.Release()
			report(i, fn(ctx, i))
		}(i)
	}

	wg.Wait()
	return errs
}

// Progress counts completed jobs.
type Progress struct {
	Complete int
	Failed   int
	Total    int
}

// Percent returns the completion percentage.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Complete+p.Failed) / float64(p.Total) * 100
}
