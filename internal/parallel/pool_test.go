package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
}

func TestPool_CreateZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestPool_CreateNegativeWorkers(t *testing.T) {
	pool := NewPool(-3)
	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestPool_RunVisitsEveryIndexOnce(t *testing.T) {
	pool := NewPool(4)

	const n = 1000
	visits := make([]atomic.Int32, n)
	pool.Run(n, func(i int) {
		visits[i].Add(1)
	})

	for i := range visits {
		if got := visits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestPool_RunEmpty(t *testing.T) {
	pool := NewPool(2)
	called := false
	pool.Run(0, func(i int) { called = true })
	pool.Run(-5, func(i int) { called = true })
	if called {
		t.Error("Run with n <= 0 invoked fn")
	}
}

func TestPool_RunSingleWorker(t *testing.T) {
	pool := NewPool(1)

	// A single-slot pool must run strictly sequentially and in order.
	var order []int
	pool.Run(50, func(i int) {
		order = append(order, i)
	})

	if len(order) != 50 {
		t.Fatalf("len(order) = %d, want 50", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestPool_SlotBound(t *testing.T) {
	const workers = 3
	pool := NewPool(workers)

	var active, peak atomic.Int32
	pool.Run(200, func(i int) {
		cur := active.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		// Small spin so slots actually overlap.
		for j := 0; j < 1000; j++ {
			_ = j
		}
		active.Add(-1)
	})

	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency = %d, want <= %d", got, workers)
	}
}

func TestPool_ConcurrentRunCalls(t *testing.T) {
	pool := NewPool(4)

	// Several goroutines sharing one pool, as profile evaluation does.
	const callers = 6
	const n = 300
	var total atomic.Int64

	var wg sync.WaitGroup
	wg.Add(callers)
	for c := 0; c < callers; c++ {
		go func() {
			defer wg.Done()
			pool.Run(n, func(i int) {
				total.Add(1)
			})
		}()
	}
	wg.Wait()

	if got := total.Load(); got != callers*n {
		t.Errorf("total invocations = %d, want %d", got, callers*n)
	}
}

func BenchmarkPool_Run(b *testing.B) {
	pool := NewPool(0)
	work := func(i int) {
		x := float64(i)
		for j := 0; j < 100; j++ {
			x = x * 1.0000001
		}
		_ = x
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Run(512, work)
	}
}
