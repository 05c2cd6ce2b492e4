package frauddetection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetTasksExcludesPending(t *testing.T) {
	a := New()

	tasks := a.GetTasks(map[string]struct{}{})
	assert.Contains(t, tasks, TaskName)

	tasks = a.GetTasks(map[string]struct{}{TaskName: {}})
	assert.NotContains(t, tasks, TaskName)
}

func TestTaskBlocksUntilCancelled(t *testing.T) {
	a := New()
	task := a.GetTasks(map[string]struct{}{})[TaskName]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		task(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("task must not resolve before ctx is cancelled")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task should resolve promptly after cancellation")
	}
}
