// Package fixedtask provides a move-by-convention, type-erased nullary
// callable with an inline storage budget, used as the element type stored
// in a ringqueue.Queue.
//
// A Task never wraps a virtual-dispatch interface internally: like the
// C++ original this is translated from, it carries a two-function-pointer
// trampoline (call, destroy) alongside a boxed payload, and a "present"
// discriminant rather than a nil check.
package fixedtask

import (
	"errors"
	"io"
	"unsafe"
)

// DefaultStorageBudget is the default ceiling, in bytes, on the size of a
// Runnable value accepted by New. It accommodates a small captured state,
// matching the C++ original's 128-byte aligned_storage default.
const DefaultStorageBudget = 128

var (
	// ErrEmptyCallable is returned by Invoke when the Task holds no payload.
	ErrEmptyCallable = errors.New("fixedtask: invoke of empty task")

	// ErrTaskTooLarge is returned by New when a Runnable's size exceeds the
	// storage budget.
	ErrTaskTooLarge = errors.New("fixedtask: callable exceeds storage budget")
)

// Runnable is any value-typed nullary callable. It is the Go analogue of
// the C++ original's arbitrary movable functor object: New measures its
// size with unsafe.Sizeof exactly as the original measures sizeof(FUNC)
// against its aligned_storage budget.
type Runnable interface {
	Run()
}

// Task is a move-by-convention, type-erased nullary callable. The zero
// value is an empty Task: invoking it fails with ErrEmptyCallable.
//
// Task must not be copied after it has been pushed into a queue; ownership
// transfer happens by moving the struct (a plain Go assignment), and the
// queue zeroes a slot's Task once popped so at most one live copy is ever
// observable at a time. This is a documented convention, not a mechanically
// enforced one: Go has no copy constructor to delete, and a vet-enforced
// no-copy marker would also flag the ring queue's own legitimate internal
// transfers.
type Task struct {
	payload any
	call    func(any)
	destroy func(any)
	present bool
}

// funcRunnable adapts a plain func() into a Runnable, for the common case
// of wrapping a closure directly.
type funcRunnable func()

func (f funcRunnable) Run() { f() }

// Func wraps fn as a Task. fn is always well within the default storage
// budget (a Go func value is a single word), so this never fails.
func Func(fn func()) Task {
	t, err := New(funcRunnable(fn), DefaultStorageBudget)
	if err != nil {
		// unreachable: a func value is far smaller than any sane budget.
		panic(err)
	}
	return t
}

// New builds a Task from a Runnable whose in-memory footprint does not
// exceed budget bytes. A budget of 0 selects DefaultStorageBudget.
//
// If v also implements io.Closer, its Close method is invoked exactly
// once, standing in for the storage slot's destructor: when the Task is
// explicitly destroyed, or when it is overwritten by MoveFrom.
func New[T Runnable](v T, budget uintptr) (Task, error) {
	if budget == 0 {
		budget = DefaultStorageBudget
	}
	if unsafe.Sizeof(v) > budget {
		return Task{}, ErrTaskTooLarge
	}
	return Task{
		payload: v,
		call: func(p any) {
			p.(T).Run()
		},
		destroy: destroyPayload,
		present: true,
	}, nil
}

func destroyPayload(p any) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}

// Present reports whether the Task holds a payload.
func (t Task) Present() bool {
	return t.present
}

// Invoke runs the stored callable. It returns ErrEmptyCallable if the Task
// is empty. Invoke does not recover from a panicking callable; callers
// that must isolate failures (the worker loop does) wrap Invoke themselves.
func (t Task) Invoke() error {
	if !t.present {
		return ErrEmptyCallable
	}
	t.call(t.payload)
	return nil
}

// Destroy runs the registered destroy hook, if any, and resets the Task to
// empty. Destroying an already-empty Task is a no-op.
func (t *Task) Destroy() {
	if t.present && t.destroy != nil {
		t.destroy(t.payload)
	}
	*t = Task{}
}

// MoveFrom transfers src's payload into t, first destroying whatever t
// currently holds (the same rule the original's move-assignment applies:
// destination destructor runs before the overwrite). Afterward src is
// left empty. Moving a Task into itself is a no-op.
//
// Field-by-field assignment (rather than a whole-struct copy) is used
// deliberately so that, were a no-copy marker ever added to Task, this
// internal transfer would not trip it.
func (t *Task) MoveFrom(src *Task) {
	if t == src {
		return
	}
	if t.present && t.destroy != nil {
		t.destroy(t.payload)
	}
	t.payload = src.payload
	t.call = src.call
	t.destroy = src.destroy
	t.present = src.present
	src.payload = nil
	src.call = nil
	src.destroy = nil
	src.present = false
}
