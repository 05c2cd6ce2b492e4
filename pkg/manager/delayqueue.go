package manager

import (
	"container/heap"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

// delayItem is one pending re-spawn, ordered by expiry.
type delayItem[T comparable] struct {
	expiry time.Time
	result agent.TaskResult[T]
	index  int
}

type delayHeap[T comparable] []*delayItem[T]

func (h delayHeap[T]) Len() int            { return len(h) }
func (h delayHeap[T]) Less(i, j int) bool  { return h[i].expiry.Before(h[j].expiry) }
func (h delayHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *delayHeap[T]) Push(x interface{}) {
	item := x.(*delayItem[T])
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *delayHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// delayQueue is a timer-driven priority queue of TaskResult[T] values
// waiting to be re-spawned once their update interval or backoff delay has
// elapsed. It plays the role the original scheduler gave to a
// tokio_util::time::DelayQueue wrapped in a Future.
type delayQueue[T comparable] struct {
	mu sync.Mutex
	h  delayHeap[T]
}

func newDelayQueue[T comparable]() *delayQueue[T] {
	dq := &delayQueue[T]{}
	heap.Init(&dq.h)
	return dq
}

// Push schedules result to become available after delaySeconds.
func (q *delayQueue[T]) Push(result agent.TaskResult[T], delaySeconds int64) {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	q.mu.Lock()
	heap.Push(&q.h, &delayItem[T]{
		expiry: time.Now().Add(time.Duration(delaySeconds) * time.Second),
		result: result,
	})
	q.mu.Unlock()
}

// PollExpired waits up to timeout for the earliest-expiring item to become
// due, and if one does, pops and returns it. Returns (zero, false) on
// timeout or an empty queue.
func (q *delayQueue[T]) PollExpired(timeout time.Duration) (agent.TaskResult[T], bool) {
	deadline := time.Now().Add(timeout)
	for {
		q.mu.Lock()
		if len(q.h) == 0 {
			q.mu.Unlock()
			return agent.TaskResult[T]{}, false
		}
		wait := time.Until(q.h[0].expiry)
		if wait <= 0 {
			item := heap.Pop(&q.h).(*delayItem[T])
			q.mu.Unlock()
			return item.result, true
		}
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return agent.TaskResult[T]{}, false
		}
		if wait > remaining {
			wait = remaining
		}
		time.Sleep(wait)
	}
}

// Len reports how many items are currently waiting.
func (q *delayQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
