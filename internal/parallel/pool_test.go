package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPool_Create(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{4, 4},
		{1, 1},
		{0, runtime.GOMAXPROCS(0)},
		{-5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		p := NewPool(tt.workers)
		if p.Workers() != tt.want {
			t.Errorf("NewPool(%d).Workers() = %d, want %d", tt.workers, p.Workers(), tt.want)
		}
		if !p.IsRunning() {
			t.Errorf("NewPool(%d) not running", tt.workers)
		}
		p.Close()
	}
}

func TestPool_ForVisitsEveryIndex(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const n = 257
	seen := make([]int32, n)
	p.For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestPool_ForEmpty(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	called := false
	p.For(0, func(int) { called = true })
	p.For(-1, func(int) { called = true })
	if called {
		t.Error("For() with n <= 0 called fn")
	}
}

func TestPool_ForSingleWorkerRunsInline(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	var order []int
	p.For(5, func(i int) { order = append(order, i) })
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
	if len(order) != 5 {
		t.Errorf("len(order) = %d, want 5", len(order))
	}
}

func TestPool_CloseIdempotent(t *testing.T) {
	p := NewPool(3)
	p.Close()
	p.Close()
	if p.IsRunning() {
		t.Error("IsRunning() after Close = true")
	}
}

func TestPool_ForAfterClose(t *testing.T) {
	p := NewPool(3)
	p.Close()

	var count int
	p.For(10, func(int) { count++ })
	if count != 10 {
		t.Errorf("For() after Close ran %d calls, want 10", count)
	}
}

func TestPool_ConcurrentCallers(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.For(100, func(int) { total.Add(1) })
		}()
	}
	wg.Wait()
	if got := total.Load(); got != 800 {
		t.Errorf("total = %d, want 800", got)
	}
}
