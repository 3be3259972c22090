// Package parallel runs independent pieces of a frame on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines fed from a shared queue.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	jobs    chan func()
	wg      sync.WaitGroup
	running atomic.Bool
	closeMu sync.RWMutex
}

// NewPool starts a pool. If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		jobs:    make(chan func(), workers*4),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// For calls fn(i) for every i in [0, n) and waits for all calls to return.
// Calls for different i may run concurrently. On a closed pool, or when
// the pool has a single worker, the calls run on the caller's goroutine.
func (p *Pool) For(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	p.closeMu.RLock()
	if !p.running.Load() || p.workers == 1 || n == 1 {
		p.closeMu.RUnlock()
		for i := range n {
			fn(i)
		}
		return
	}

	var done sync.WaitGroup
	done.Add(n)
	for i := range n {
		p.jobs <- func() {
			defer done.Done()
			fn(i)
		}
	}
	p.closeMu.RUnlock()
	done.Wait()
}

// Close stops the workers after the queued work drains. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.closeMu.Unlock()
		return
	}
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still dispatches to its workers.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
