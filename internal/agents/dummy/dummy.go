// Package dummy implements a minimal agent.Agent[string] that alternates
// between success and a synthetic failure roughly half the time, so
// integration tests can exercise the manager's backoff and recovery paths
// without depending on any real upstream data source.
package dummy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/store"
)

const (
	// TaskName is the single task instance this agent schedules.
	TaskName = "dummy-task"

	updateIntervalSeconds    = 3
	initialRetryDelaySeconds = 1
	storeKeyPrefix           = "dummy_"
)

// Agent is a sample agent.Agent[string] implementation. Its single task
// instance writes a result to the given store on every run, alternating
// between Ok and a synthetic error, and logs the store's current error
// entries on each attempt the way the original sample logged via
// error_iter before trying something.
type Agent struct {
	store *store.FallbackStore[string]

	mu         sync.Mutex
	retryDelay map[string]int64
}

// New builds a dummy agent that records its results in s.
func New(s *store.FallbackStore[string]) *Agent {
	return &Agent{store: s, retryDelay: make(map[string]int64)}
}

// GetTasks returns the single dummy task instance unless it's already
// pending.
func (a *Agent) GetTasks(pending map[string]struct{}) map[string]func(context.Context) agent.TaskResult[string] {
	if _, ok := pending[TaskName]; ok {
		return map[string]func(context.Context) agent.TaskResult[string]{}
	}
	return map[string]func(context.Context) agent.TaskResult[string]{
		TaskName: a.run,
	}
}

func (a *Agent) run(ctx context.Context) agent.TaskResult[string] {
	a.logCurrentErrors()

	ts := time.Now().Unix()
	if rand.IntN(2) == 0 {
		err := a.store.Insert(storeKeyPrefix+TaskName, store.Ok("tick"))
		return agent.TaskResult[string]{TaskType: TaskName, Err: err, Timestamp: ts}
	}

	syntheticErr := fmt.Errorf("dummy agent: synthetic failure")
	_ = a.store.Insert(storeKeyPrefix+TaskName, store.Err[string](store.NewError(syntheticErr.Error())))
	return agent.TaskResult[string]{TaskType: TaskName, Err: syntheticErr, Timestamp: ts}
}

func (a *Agent) logCurrentErrors() {
	logger := log.WithAgent("dummy")
	for key, entryErr := range a.store.ErrorIter(storeKeyPrefix) {
		logger.Debug().Str("key", key).Err(entryErr).Msg("existing store error")
	}
}

// GetUpdateIntervalSeconds is constant across the single task instance.
func (a *Agent) GetUpdateIntervalSeconds(string) int64 { return updateIntervalSeconds }

// GetRetryDelaySeconds returns the current backoff for task, defaulting to
// the agent's initial delay the first time it's asked.
func (a *Agent) GetRetryDelaySeconds(task string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.retryDelay[task]; ok {
		return d
	}
	return initialRetryDelaySeconds
}

// SetRetryDelaySeconds overwrites the backoff for task.
func (a *Agent) SetRetryDelaySeconds(task string, seconds int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay[task] = seconds
}

// ResetRetryDelay restores task's backoff to the agent's baseline.
func (a *Agent) ResetRetryDelay(task string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay[task] = initialRetryDelaySeconds
}
