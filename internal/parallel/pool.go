package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs index-based work in parallel on a bounded number of
// execution slots.
//
// Profile evaluation parallelizes across image rows, and rows are far
// from uniform in cost: rows crossing a profile centre trigger deep
// recursive subsampling while outer rows are a single function call per
// pixel. Workers therefore claim indices one at a time from a shared
// cursor instead of being handed fixed shards, which keeps all slots
// busy until the last row is done.
//
// Thread safety: Pool is safe for concurrent use. Several goroutines
// may call Run at the same time; the slot limit holds across all of
// them combined, so the configured parallelism is a process-wide bound
// rather than a per-call one.
type Pool struct {
	// workers is the maximum number of concurrently executing slots.
	workers int

	// slots is a counting semaphore with capacity workers. Every
	// goroutine executing work, including the Run caller itself,
	// holds one slot while it runs.
	slots chan struct{}
}

// NewPool creates a pool with the given number of execution slots.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: workers,
		slots:   make(chan struct{}, workers),
	}
}

// Run invokes fn(i) for every i in [0, n) and returns once all calls
// have completed. Calls run concurrently on up to Workers slots; the
// caller's own goroutine participates, so Run makes progress even when
// every other slot is busy in concurrent Run calls.
//
// fn must not call Run on the same pool.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	// The caller occupies a slot for the duration.
	p.slots <- struct{}{}
	defer func() { <-p.slots }()

	if n == 1 || p.workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	loop := func() {
		for {
			i := int(next.Add(1)) - 1
			if i >= n {
				return
			}
			fn(i)
		}
	}

	// Recruit helpers for whatever slots are free right now. If none
	// are, the work still completes on the caller's slot.
	var wg sync.WaitGroup
recruit:
	for h := 0; h < p.workers-1 && h < n-1; h++ {
		select {
		case p.slots <- struct{}{}:
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-p.slots }()
				loop()
			}()
		default:
			break recruit
		}
	}

	loop()
	wg.Wait()
}

// Workers returns the number of execution slots.
func (p *Pool) Workers() int {
	return p.workers
}
