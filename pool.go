// Package taskpool is a fixed-size, work-stealing task execution engine.
// Each worker owns a bounded lock-free ring queue (package ringqueue) of
// type-erased nullary callables (package fixedtask); a worker that runs
// dry steals from its siblings in round-robin order before parking.
//
// Dispatch favors affinity: a task posted from a goroutine that is
// itself a pool worker is pushed onto that worker's own queue first, so
// a task that reposts work (a common pattern for chained or recursive
// work) tends to stay on the same worker rather than bouncing across
// the pool. A task posted from any other goroutine is spread across
// workers by round robin, falling back to a full scan, and — for Post,
// never TryPost — to a progressively backed-off retry loop once every
// queue is observed full.
package taskpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-foundations/taskpool/fixedtask"
	"github.com/go-foundations/taskpool/internal/gls"
)

// Pool is a fixed set of worker goroutines sharing a cooperative
// work-stealing scheduler. The zero value is not usable; construct one
// with New.
type Pool struct {
	workers  []*worker
	registry *gls.Registry
	next     atomic.Uint32

	closeOnce sync.Once
}

// New constructs a Pool and starts its worker goroutines. It returns
// ErrInvalidQueueCapacity if opts.WorkerQueueCapacity, after defaulting,
// is not a power of two >= 2.
func New(opts Options) (*Pool, error) {
	resolved := opts.resolve()

	if resolved.WorkerQueueCapacity < 2 || resolved.WorkerQueueCapacity&(resolved.WorkerQueueCapacity-1) != 0 {
		return nil, ErrInvalidQueueCapacity
	}

	registry := &gls.Registry{}
	workers := make([]*worker, resolved.ThreadCount)
	for i := range workers {
		w, err := newWorker(uint32(i), resolved.WorkerQueueCapacity, registry)
		if err != nil {
			return nil, err
		}
		workers[i] = w
	}

	p := &Pool{
		workers:  workers,
		registry: registry,
	}

	// Every worker shares the same backing slice, so a steal scan from
	// any worker can reach any sibling, including ones started after it.
	for _, w := range workers {
		w.start(workers)
	}

	return p, nil
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

// WorkerStats is a point-in-time snapshot of one worker's activity,
// exposed for monitoring (see package poolmetrics).
type WorkerStats struct {
	ID            uint32
	QueueDepth    int
	TasksExecuted uint64
	TasksStolen   uint64
}

// Stats returns a snapshot of every worker's activity, in worker id
// order.
func (p *Pool) Stats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = WorkerStats{
			ID:            w.id,
			QueueDepth:    w.queueDepth(),
			TasksExecuted: w.tasksExecuted(),
			TasksStolen:   w.tasksStolen(),
		}
	}
	return stats
}

// TryPost attempts to enqueue t without blocking. It returns false if
// every worker's queue was observed full during the attempt; the
// caller retains ownership of t in that case.
//
// If the calling goroutine is itself one of the pool's workers, t goes
// to that worker's own queue first (affinity). Otherwise dispatch
// advances a shared round-robin counter and tries that worker first.
// Either way, if the chosen worker's queue is full, TryPost falls back
// to a single full scan of every other worker before giving up.
func (p *Pool) TryPost(t fixedtask.Task) bool {
	n := uint32(len(p.workers))

	start := p.registry.Current()
	if start == gls.NoWorker {
		start = (p.next.Add(1) - 1) % n
	}

	if p.workers[start].tryPost(t) {
		return true
	}

	for i := uint32(1); i < n; i++ {
		idx := (start + i) % n
		if p.workers[idx].tryPost(t) {
			return true
		}
	}

	return false
}

// Post submits t, retrying with a progressive backoff for as long as
// every worker's queue is full. Post never drops t and does not return
// until some worker accepts it.
//
// Calling Post or TryPost after Close has been called is undefined
// behavior, exactly as misusing a value after it has been destroyed
// would be.
func (p *Pool) Post(t fixedtask.Task) {
	const backoffBase = 50 * time.Microsecond
	const backoffMax = 2 * time.Millisecond

	backoff := backoffBase
	for !p.TryPost(t) {
		time.Sleep(backoff)
		backoff *= 2
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
}

// Close stops every worker and blocks until all of their goroutines
// have exited. Close does not drain queues: workers are stopped one at a
// time, each exiting once it observes the stop between tasks, so a task
// still queued when Close is called may or may not be invoked. Close is
// idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		for _, w := range p.workers {
			w.stop()
		}
	})
}
