package taskpool

import "errors"

// ErrInvalidQueueCapacity is returned by New when Options.WorkerQueueCapacity
// is not a power of two >= 2.
var ErrInvalidQueueCapacity = errors.New("taskpool: worker queue capacity must be a power of two >= 2")

// ErrQueueFull is the logical QueueFull condition spec'd for try-style
// calls. Pool.TryPost and the internal worker.tryPost surface it only via
// their boolean return; the process façade surfaces it as an actual
// error, since process.Submit has no other way to report a full queue.
var ErrQueueFull = errors.New("taskpool: queue full")
