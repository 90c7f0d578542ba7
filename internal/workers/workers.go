// Package workers manages the client's background loops (sync job, autopunch
// scheduler, connectivity watcher) as a single unit with a shared lifecycle.
package workers

import "context"

// Worker is a background loop with an explicit lifecycle. Start must not
// block; Stop blocks until the loop has fully exited. Both must be safe to
// call more than once.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// Workers runs a fixed set of background workers together.
type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers. They start in the given order and
// stop in reverse.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start launches every worker in order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop halts every worker in reverse start order and blocks until all loops
// have exited.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
