package rt

import (
	"sync"
	"sync/atomic"
)

// Future is a single-assignment, thread-safe asynchronous result cell.
// It starts pending and moves exactly once to a terminal state holding
// either a value or an error; completing it twice is a contract
// violation. It is the one component of this package designed for
// cross-goroutine use.
//
// There is no cancellation and no timeout; callers that need either
// layer them above this primitive.
type Future struct {
	RefTarget
	mu        sync.Mutex
	completed atomic.Bool
	done      chan struct{}
	value     Value
	err       error
	callbacks []func()
}

// NewFuture creates a pending future.
func NewFuture() Ref[*Future] {
	return NewRef(&Future{done: make(chan struct{})})
}

func (f *Future) finalize() {
	f.value.Drop()
}

// Completed reports whether the future has reached a terminal state.
func (f *Future) Completed() bool { return f.completed.Load() }

// MarkCompleted moves the future to its value state, taking ownership
// of v, then fires every queued callback in registration order on the
// calling goroutine. Callbacks run after the internal lock is released,
// so they may safely re-enter AddCallback, Wait, or Value.
//
// Completing an already-terminal future panics.
func (f *Future) MarkCompleted(v Value) {
	f.mu.Lock()
	if f.completed.Load() {
		f.mu.Unlock()
		panic("Future.MarkCompleted: already completed")
	}
	f.value = v
	f.completed.Store(true)
	cbs := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)
	for _, cb := range cbs {
		cb()
	}
}

// MarkError moves the future to its error state. Everything else works
// as in MarkCompleted.
func (f *Future) MarkError(err error) {
	f.mu.Lock()
	if f.completed.Load() {
		f.mu.Unlock()
		panic("Future.MarkError: already completed")
	}
	f.err = err
	f.completed.Store(true)
	cbs := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)
	for _, cb := range cbs {
		cb()
	}
}

// AddCallback registers cb to run when the future completes. If it is
// already terminal, cb runs immediately and synchronously on the
// calling goroutine, before AddCallback returns. Either way cb runs
// exactly once, without the internal lock held.
func (f *Future) AddCallback(cb func()) {
	f.mu.Lock()
	if f.completed.Load() {
		f.mu.Unlock()
		cb()
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Wait blocks the calling goroutine until the future is terminal. It
// returns immediately if it already is.
func (f *Future) Wait() {
	<-f.done
}

// Value returns the completed result as a borrow, or the stored error
// if the future failed. Calling Value on a pending future is a contract
// violation.
func (f *Future) Value() (Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.completed.Load() {
		panic("Future.Value: not completed")
	}
	if f.err != nil {
		return Value{}, f.err
	}
	return f.value, nil
}
