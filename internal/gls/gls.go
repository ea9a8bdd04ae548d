// Package gls emulates goroutine-local storage for the one piece of state
// taskpool genuinely needs to carry per-goroutine: "which worker, if any,
// is the calling goroutine?" Go has no OS-thread-local storage, and a
// goroutine is not a thread, so there is no portable primitive for this.
//
// The technique here — parsing the numeric goroutine id out of a
// runtime.Stack dump — is the standard workaround used by the small
// family of "goroutine id" packages in the wider Go ecosystem (the
// retrieval pack references one, github.com/joeycumines/goroutineid, by
// module path only; its source was not available to bind against safely,
// so this package reimplements the well-known technique directly rather
// than guess at an unverified API). It is the direct descendant of the
// C++ original's cached_thread_id()/workers_map_t in
// thread_pool/work_distributor.hpp: a map from the calling execution
// context's identity to the worker that owns it.
package gls

import (
	"runtime"
	"strconv"
	"sync"
)

// NoWorker is the sentinel value Current returns for a goroutine that has
// no bound worker id. It is the maximum representable uint32, matching
// the "sentinel distinguishable from any valid id" requirement: a pool
// will never have anywhere near 2^32-1 workers.
const NoWorker = ^uint32(0)

// Registry binds goroutine ids to worker ids. The zero value is ready to
// use. Each taskpool.Pool owns its own Registry so that multiple pools in
// one process do not interfere with each other's affinity bindings.
type Registry struct {
	bindings sync.Map // goroutine id (uint64) -> worker id (uint32)
}

// Bind records that the calling goroutine is worker id. It must be called
// exactly once, by the worker's own goroutine, before that goroutine does
// anything that might call Current (directly or by posting a task that
// itself posts).
func (r *Registry) Bind(id uint32) {
	r.bindings.Store(goroutineID(), id)
}

// Unbind removes any binding for the calling goroutine. Workers call this
// on exit so a goroutine id is never resolved to a stale, already-exited
// worker should the runtime ever reuse the id space.
func (r *Registry) Unbind() {
	r.bindings.Delete(goroutineID())
}

// Current returns the worker id bound to the calling goroutine, or
// NoWorker if the calling goroutine is not a pool worker.
func (r *Registry) Current() uint32 {
	v, ok := r.bindings.Load(goroutineID())
	if !ok {
		return NoWorker
	}
	return v.(uint32)
}

// goroutineID extracts the numeric id the runtime assigns to the calling
// goroutine by parsing the first line of a runtime.Stack dump, which
// always begins "goroutine <N> [...". This allocates and is not meant
// for use on a hot per-task path; taskpool calls it twice per worker (on
// Bind and Unbind) and once per TryPost call from any goroutine (Post
// calls TryPost once per attempt), never per queue operation.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) < len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	b = b[len(prefix):]

	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
