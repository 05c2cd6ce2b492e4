package manager

import (
	"context"
	"fmt"
	"sync"
)

// outcome is what a tracked goroutine reports back to its joinSet once it
// stops running, however it stopped.
type outcome[T any] struct {
	id        uint64
	value     T
	err       error
	cancelled bool
	panicked  bool
}

// joinSet is this module's stand-in for Tokio's JoinSet: a pool of tracked
// goroutines, each tagged with a monotonic id, whose completions (success,
// error, cancellation, or recovered panic) are delivered over a channel
// instead of being awaited one at a time. Spawned functions are run with
// recover() so a panicking agent closure can't take the process down with
// it.
type joinSet[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	running map[uint64]context.CancelFunc
	done    chan outcome[T]
}

func newJoinSet[T any]() *joinSet[T] {
	return &joinSet[T]{
		running: make(map[uint64]context.CancelFunc),
		done:    make(chan outcome[T], 256),
	}
}

// Spawn runs fn on its own goroutine under a context derived from parent,
// returning the id the completion will be tagged with.
func (s *joinSet[T]) Spawn(parent context.Context, fn func(context.Context) (T, error)) uint64 {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.running[id] = cancel
	s.mu.Unlock()

	go s.run(ctx, id, fn)
	return id
}

func (s *joinSet[T]) run(ctx context.Context, id uint64, fn func(context.Context) (T, error)) {
	out := outcome[T]{id: id}
	func() {
		defer func() {
			if r := recover(); r != nil {
				out.panicked = true
				out.err = fmt.Errorf("task %d panicked: %v", id, r)
			}
		}()
		v, err := fn(ctx)
		if ctx.Err() != nil && err == nil {
			out.cancelled = true
		}
		out.value, out.err = v, err
	}()

	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()

	s.done <- out
}

// PollCompleted drains every outcome currently ready without blocking,
// returning as soon as none are. Safe to call repeatedly on an empty pool.
func (s *joinSet[T]) PollCompleted() []outcome[T] {
	var completed []outcome[T]
	for {
		select {
		case o := <-s.done:
			completed = append(completed, o)
		default:
			return completed
		}
	}
}

// Len reports the number of goroutines currently tracked as running.
func (s *joinSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// Shutdown cancels every tracked goroutine and waits for all of them to
// report back, bounded by ctx. Outcomes observed during shutdown are
// discarded — by the time Shutdown runs, nothing is left to act on them.
func (s *joinSet[T]) Shutdown(ctx context.Context) {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.running))
	for _, cancel := range s.running {
		cancels = append(cancels, cancel)
	}
	remaining := len(s.running)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	for remaining > 0 {
		select {
		case <-s.done:
			remaining--
		case <-ctx.Done():
			return
		}
	}
}
