// Package process is an optional, non-core façade over taskpool.Pool for
// callers that want a value (or error) back from a posted task, the Go
// analogue of the C++ original's process()/std::future pairing. The core
// Pool API is fire-and-forget by design; this package exists only for
// collaborators who need the result-returning convenience on top of it.
package process

import (
	"context"

	"github.com/go-foundations/taskpool"
	"github.com/go-foundations/taskpool/fixedtask"
)

// Future is the result of a Submit call. Its zero value is not usable.
type Future[R any] struct {
	done chan struct{}
	val  R
	err  error
}

// Wait blocks until the submitted task has run, or ctx is done,
// whichever comes first.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Submit wraps fn as a fixedtask.Task and posts it to pool without
// blocking, returning a Future that is fulfilled when fn runs. It
// returns taskpool.ErrQueueFull if the task could not be enqueued
// because every worker's queue was full.
func Submit[R any](pool *taskpool.Pool, fn func() (R, error)) (*Future[R], error) {
	f := &Future[R]{done: make(chan struct{})}

	task := fixedtask.Func(func() {
		defer close(f.done)
		f.val, f.err = fn()
	})

	if !pool.TryPost(task) {
		return nil, taskpool.ErrQueueFull
	}
	return f, nil
}
