package services

import (
	"context"
	"log"
	"time"
)

// AsyncDispatcher implements domain.Dispatcher by running each task on a
// detached goroutine with its own timeout context. Tasks are at-most-once:
// a process exit drops whatever is still in flight, and a failure is logged
// but never retried or surfaced to the request that scheduled it.
type AsyncDispatcher struct {
	timeout time.Duration
}

// NewAsyncDispatcher creates a dispatcher whose tasks are bounded by timeout.
func NewAsyncDispatcher(timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{timeout: timeout}
}

// Dispatch implements domain.Dispatcher
func (d *AsyncDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("BACKGROUND_TASK_PANIC: task=%s panic=%v", name, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("BACKGROUND_TASK_FAILED: task=%s error=%v", name, err)
		}
	}()
}
