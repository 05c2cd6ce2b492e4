// Package tallyresults schedules periodic refreshes of governance proposal
// vote tallies. Collection logic is not yet implemented; GetTasks
// enumerates one task instance per configured dimension and immediately
// resolves it.
package tallyresults

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

const (
	updateIntervalSeconds    = 60 * 15
	initialRetryDelaySeconds = 60
)

// Agent refreshes one task instance per (chain, proposal) dimension.
type Agent struct {
	dimensions []string

	mu         sync.Mutex
	retryDelay map[string]int64
}

// New builds a tally-results agent covering the given dimensions.
func New(dimensions []string) *Agent {
	return &Agent{dimensions: dimensions, retryDelay: make(map[string]int64)}
}

func (a *Agent) GetTasks(pending map[string]struct{}) map[string]func(context.Context) agent.TaskResult[string] {
	tasks := make(map[string]func(context.Context) agent.TaskResult[string])
	for _, dim := range a.dimensions {
		if _, ok := pending[dim]; ok {
			continue
		}
		dim := dim
		tasks[dim] = func(context.Context) agent.TaskResult[string] {
			return agent.TaskResult[string]{TaskType: dim, Timestamp: time.Now().Unix()}
		}
	}
	return tasks
}

func (a *Agent) GetUpdateIntervalSeconds(string) int64 { return updateIntervalSeconds }

func (a *Agent) GetRetryDelaySeconds(task string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.retryDelay[task]; ok {
		return d
	}
	return initialRetryDelaySeconds
}

func (a *Agent) SetRetryDelaySeconds(task string, seconds int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay[task] = seconds
}

func (a *Agent) ResetRetryDelay(task string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryDelay[task] = initialRetryDelaySeconds
}
