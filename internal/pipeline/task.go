package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Task is a handle on one background load. Waiters share the same task.
type Task struct {
	ID string

	// ctx is cancelled when the task is detached by Reset or the pipeline closes.
	ctx    context.Context
	cancel context.CancelFunc
	// detached is guarded by the pipeline mutex.
	detached bool

	partialOnce sync.Once
	partial     chan struct{}
	done        chan struct{}

	// Written once before done is closed.
	snap Snapshot
	err  error
}

func newTask(parent context.Context) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ID:      uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
		partial: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Done is closed when the task has finished, successfully or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is cancelled.
// Cancelling ctx does not stop the task.
func (t *Task) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-t.done:
		return t.snap, t.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Err returns the task error. It is only meaningful once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// markPartial signals that usable (partial or complete) data exists.
func (t *Task) markPartial() {
	t.partialOnce.Do(func() { close(t.partial) })
}

func (t *Task) finish(snap Snapshot, err error) {
	t.snap = snap
	t.err = err
	close(t.done)
	t.markPartial()
}
