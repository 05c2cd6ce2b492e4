// Package proposalview maintains a denormalized view over governance
// proposal data by watching the store for writes instead of polling on a
// fixed interval. Its single task instance has a zero update interval and
// a zero initial retry delay: the task closure subscribes to the store's
// change feed and blocks until either a write arrives or ctx is cancelled,
// so it never busy-loops the manager's completion handler the way a
// closure that returned immediately would.
package proposalview

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
	"github.com/chainwatch/fleetbot/pkg/store"
)

// TaskName is the single, continuously-running task instance.
const TaskName = "proposal-view"

const (
	updateIntervalSeconds    = 0
	initialRetryDelaySeconds = 0
	watchedPrefix            = "governance_"
)

// Agent rebuilds its view whenever a governance-prefixed key changes.
type Agent struct {
	store *store.FallbackStore[string]

	mu         sync.Mutex
	retryDelay int64
}

// New builds a proposal-view agent watching s under the governance prefix.
func New(s *store.FallbackStore[string]) *Agent {
	return &Agent{store: s, retryDelay: initialRetryDelaySeconds}
}

func (a *Agent) GetTasks(pending map[string]struct{}) map[string]func(context.Context) agent.TaskResult[string] {
	if _, ok := pending[TaskName]; ok {
		return map[string]func(context.Context) agent.TaskResult[string]{}
	}
	return map[string]func(context.Context) agent.TaskResult[string]{
		TaskName: a.run,
	}
}

func (a *Agent) run(ctx context.Context) agent.TaskResult[string] {
	changes, cancel := a.store.WatchPrefix(watchedPrefix)
	defer cancel()

	select {
	case <-changes:
		return agent.TaskResult[string]{TaskType: TaskName, Timestamp: time.Now().Unix()}
	case <-ctx.Done():
		return agent.TaskResult[string]{TaskType: TaskName, Timestamp: time.Now().Unix()}
	}
}

func (a *Agent) GetUpdateIntervalSeconds(string) int64 { return updateIntervalSeconds }

func (a *Agent) GetRetryDelaySeconds(string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.retryDelay
}

func (a *Agent) SetRetryDelaySeconds(_ string, seconds int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay = seconds
}

func (a *Agent) ResetRetryDelay(string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay = initialRetryDelaySeconds
}
