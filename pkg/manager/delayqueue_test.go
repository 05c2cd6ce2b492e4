package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

func TestDelayQueueImmediateExpiry(t *testing.T) {
	q := newDelayQueue[string]()
	q.Push(agent.TaskResult[string]{TaskType: "a"}, 0)

	result, ok := q.PollExpired(200 * time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, "a", result.TaskType)
}

func TestDelayQueuePollTimesOutWhenEmpty(t *testing.T) {
	q := newDelayQueue[string]()
	_, ok := q.PollExpired(50 * time.Millisecond)
	assert.False(t, ok)
}

func TestDelayQueueOrdersByExpiry(t *testing.T) {
	q := newDelayQueue[string]()
	q.Push(agent.TaskResult[string]{TaskType: "later"}, 1)
	q.Push(agent.TaskResult[string]{TaskType: "sooner"}, 0)

	first, ok := q.PollExpired(200 * time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, "sooner", first.TaskType)
}

func TestDelayQueueLen(t *testing.T) {
	q := newDelayQueue[string]()
	assert.Equal(t, 0, q.Len())
	q.Push(agent.TaskResult[string]{TaskType: "a"}, 5)
	assert.Equal(t, 1, q.Len())
}
