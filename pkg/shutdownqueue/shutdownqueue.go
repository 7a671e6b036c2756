// Package shutdownqueue collects cleanup tasks during startup and drains them
// in LIFO order at the end of main:
//
//	shutdownqueue.Add(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	...
//	defer shutdownqueue.Shutdown(ctx)
//
// Shutdown is idempotent; task panics are recovered and task errors are
// aggregated with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is one shutdown step. It should honor ctx.
type Task func(ctx context.Context) error

var (
	mu     sync.Mutex
	tasks  []Task
	closed bool
)

// Add registers a task to run on Shutdown. Nil tasks and tasks registered
// after shutdown has started are ignored.
func Add(t Task) {
	if t == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if closed {
		return
	}

	tasks = append(tasks, t)
}

// Shutdown drains registered tasks in reverse registration order. If ctx
// expires mid-drain, the remaining tasks are skipped and the context error is
// included in the result.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	pending := tasks
	tasks = nil
	closed = true
	mu.Unlock()

	var errs []error

	for i := len(pending) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		func(t Task) {
			defer func() {
				r := recover()
				if r != nil {
					errs = append(errs, fmt.Errorf("panic in shutdown task: %v", r))
				}
			}()

			err := t(ctx)
			if err != nil {
				errs = append(errs, err)
			}
		}(pending[i])
	}

	return errors.Join(errs...)
}
