package dummy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainwatch/fleetbot/pkg/store"
)

func newTestAgent(t *testing.T) *Agent {
	t.Helper()
	kv, err := store.Open(filepath.Join(t.TempDir(), "dummy.db"), "task_store_")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return New(store.NewFallbackStore[string](kv))
}

func TestGetTasksExcludesPending(t *testing.T) {
	a := newTestAgent(t)

	tasks := a.GetTasks(map[string]struct{}{})
	assert.Contains(t, tasks, TaskName)

	pending := map[string]struct{}{TaskName: {}}
	tasks = a.GetTasks(pending)
	assert.NotContains(t, tasks, TaskName)
}

func TestRunRecordsResultEitherWay(t *testing.T) {
	a := newTestAgent(t)
	tasks := a.GetTasks(map[string]struct{}{})
	result := tasks[TaskName](context.Background())

	assert.Equal(t, TaskName, result.TaskType)
	assert.NotZero(t, result.Timestamp)

	entry, err := a.store.Get(storeKeyPrefix+TaskName, store.Current)
	require.NoError(t, err)
	if result.Err != nil {
		assert.False(t, entry.IsOk())
	} else {
		assert.True(t, entry.IsOk())
	}
}

func TestRetryDelayDefaultsAndResets(t *testing.T) {
	a := newTestAgent(t)
	assert.Equal(t, int64(initialRetryDelaySeconds), a.GetRetryDelaySeconds(TaskName))

	a.SetRetryDelaySeconds(TaskName, 30)
	assert.Equal(t, int64(30), a.GetRetryDelaySeconds(TaskName))

	a.ResetRetryDelay(TaskName)
	assert.Equal(t, int64(initialRetryDelaySeconds), a.GetRetryDelaySeconds(TaskName))
}

func TestUpdateIntervalConstant(t *testing.T) {
	a := newTestAgent(t)
	assert.Equal(t, int64(updateIntervalSeconds), a.GetUpdateIntervalSeconds(TaskName))
}
