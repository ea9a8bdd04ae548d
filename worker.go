package taskpool

import (
	"sync"
	"sync/atomic"

	"github.com/go-foundations/taskpool/fixedtask"
	"github.com/go-foundations/taskpool/internal/gls"
	"github.com/go-foundations/taskpool/ringqueue"
)

// worker owns one bounded ring queue and one dedicated goroutine that
// drains it, steals from siblings when it runs dry, and parks when
// nothing is found anywhere.
type worker struct {
	id       uint32
	queue    *ringqueue.Queue[fixedtask.Task]
	registry *gls.Registry

	// siblings is the pool's full worker slice, including w itself,
	// indexed by worker id. It is borrowed, never owned: the pool
	// constructs it once and every worker shares the same backing array.
	siblings []*worker

	running atomic.Bool

	executed atomic.Uint64
	stolen   atomic.Uint64

	parkMu   sync.Mutex
	parkCond *sync.Cond
	ready    bool

	// cursor is the next steal-scan starting point. It is only ever
	// touched by w's own goroutine while running, so it needs no
	// synchronization of its own.
	cursor uint32

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newWorker(id uint32, queueCapacity int, registry *gls.Registry) (*worker, error) {
	q, err := ringqueue.New[fixedtask.Task](queueCapacity)
	if err != nil {
		return nil, err
	}
	w := &worker{
		id:       id,
		queue:    q,
		registry: registry,
	}
	w.parkCond = sync.NewCond(&w.parkMu)
	return w, nil
}

// start launches the worker's goroutine. siblings must contain every
// worker in the pool, including w, indexed by worker id.
func (w *worker) start(siblings []*worker) {
	w.siblings = siblings
	w.cursor = (w.id + 1) % uint32(len(siblings))
	w.running.Store(true)
	w.wg.Add(1)
	go w.loop()
}

// loop is the worker's execution loop: local pop, then a round-robin
// steal scan over siblings, then park if both come up empty.
func (w *worker) loop() {
	defer w.wg.Done()

	w.registry.Bind(w.id)
	defer w.registry.Unbind()

	for w.running.Load() {
		if task, ok := w.queue.Pop(); ok {
			invoke(task)
			w.executed.Add(1)
			continue
		}

		if task, ok := w.stealScan(); ok {
			invoke(task)
			w.executed.Add(1)
			w.stolen.Add(1)
			continue
		}

		w.park()
	}
}

// queueDepth reports a point-in-time estimate of this worker's queue
// occupancy, for metrics.
func (w *worker) queueDepth() int {
	return w.queue.Len()
}

// tasksExecuted reports the number of tasks this worker has invoked,
// for metrics.
func (w *worker) tasksExecuted() uint64 {
	return w.executed.Load()
}

// tasksStolen reports the number of those invocations that came from a
// sibling's queue rather than this worker's own, for metrics.
func (w *worker) tasksStolen() uint64 {
	return w.stolen.Load()
}

// stealScan probes every sibling once, starting at w.cursor, skipping w
// itself. On the first successful steal it advances the cursor to the
// position after the victim, biasing future scans toward workers that
// have not been probed recently.
func (w *worker) stealScan() (fixedtask.Task, bool) {
	n := uint32(len(w.siblings))
	start := w.cursor
	for i := uint32(0); i < n; i++ {
		victim := (start + i) % n
		if victim == w.id {
			continue
		}
		if task, ok := w.siblings[victim].trySteal(); ok {
			w.cursor = (victim + 1) % n
			return task, true
		}
	}
	return fixedtask.Task{}, false
}

// trySteal is the consumer-side pop siblings use against this worker's
// queue.
func (w *worker) trySteal() (fixedtask.Task, bool) {
	return w.queue.Pop()
}

// tryPost is a non-blocking enqueue into this worker's own queue. On
// success it wakes the worker if it is parked.
func (w *worker) tryPost(t fixedtask.Task) bool {
	if !w.queue.Push(t) {
		return false
	}
	w.wake()
	return true
}

func (w *worker) wake() {
	w.parkMu.Lock()
	w.ready = true
	w.parkCond.Broadcast()
	w.parkMu.Unlock()
}

// park waits until woken by a poster, a sibling's post, or stop. The
// ready predicate is cleared by the waking party (here, by the waiter
// itself once it observes ready) so a post that races the pre-park scan
// either gets seen by that scan, or sets ready and makes this wait
// return immediately: no wakeup is ever lost.
func (w *worker) park() {
	w.parkMu.Lock()
	for !w.ready && w.running.Load() {
		w.parkCond.Wait()
	}
	w.ready = false
	w.parkMu.Unlock()
}

// stop clears the running flag, wakes the worker if parked, and joins
// its goroutine. stop is idempotent: the second and later calls are a
// no-op.
func (w *worker) stop() {
	w.stopOnce.Do(func() {
		w.running.Store(false)
		w.parkMu.Lock()
		w.ready = true
		w.parkCond.Broadcast()
		w.parkMu.Unlock()
		w.wg.Wait()
	})
}

// invoke runs a task's callable, suppressing any panic: posted tasks are
// fire-and-forget, and a failing task must not take the worker goroutine
// down with it. Callers that need a result must use the process façade.
func invoke(t fixedtask.Task) {
	defer func() {
		_ = recover()
	}()
	_ = t.Invoke()
}
