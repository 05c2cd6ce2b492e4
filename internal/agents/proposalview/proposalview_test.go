package proposalview

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainwatch/fleetbot/pkg/store"
)

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	kv, err := store.Open(filepath.Join(t.TempDir(), "view.db"), "task_store_")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return New(store.NewFallbackStore[string](kv))
}

func TestTaskResolvesOnStoreWrite(t *testing.T) {
	a := newTestAgent(t)
	task := a.GetTasks(map[string]struct{}{})[TaskName]

	done := make(chan struct{})
	go func() {
		task(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, a.store.Insert(watchedPrefix+"proposal-1", store.Ok("open")))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task should resolve once a governance-prefixed key is written")
	}
}

func TestTaskResolvesOnCancel(t *testing.T) {
	a := newTestAgent(t)
	task := a.GetTasks(map[string]struct{}{})[TaskName]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		task(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task should resolve once ctx is cancelled")
	}
}

func TestGetTasksExcludesPending(t *testing.T) {
	a := newTestAgent(t)
	assert.Contains(t, a.GetTasks(map[string]struct{}{}), TaskName)
	assert.NotContains(t, a.GetTasks(map[string]struct{}{TaskName: {}}), TaskName)
}
