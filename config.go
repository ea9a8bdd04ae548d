package taskpool

import "runtime"

// defaultWorkerQueueCapacity matches the C++ original's WORKER_QUEUE_SIZE.
const defaultWorkerQueueCapacity = 1024

// Options configures a Pool.
type Options struct {
	// ThreadCount is the number of workers to start. Zero selects the
	// host's reported CPU count (runtime.NumCPU); if that reports zero,
	// exactly one worker is created.
	ThreadCount int

	// WorkerQueueCapacity is the capacity of each worker's ring queue. It
	// must be a power of two >= 2. Zero selects defaultWorkerQueueCapacity.
	WorkerQueueCapacity int
}

// resolve fills in zero-valued fields with their defaults, without
// mutating o.
func (o Options) resolve() Options {
	resolved := o

	if resolved.ThreadCount == 0 {
		resolved.ThreadCount = runtime.NumCPU()
	}
	if resolved.ThreadCount <= 0 {
		resolved.ThreadCount = 1
	}

	if resolved.WorkerQueueCapacity == 0 {
		resolved.WorkerQueueCapacity = defaultWorkerQueueCapacity
	}

	return resolved
}
