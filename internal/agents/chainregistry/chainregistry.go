// Package chainregistry schedules periodic refreshes of the tracked chain
// registry. Collection logic is not yet implemented; GetTasks enumerates one
// task instance per configured chain and immediately resolves it, giving the
// manager a real schedule to exercise.
package chainregistry

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

const (
	updateIntervalSeconds    = 60 * 30
	initialRetryDelaySeconds = 60
)

// Agent refreshes one task instance per chain name it's configured with.
type Agent struct {
	chains []string

	mu         sync.Mutex
	retryDelay map[string]int64
}

// New builds a chain-registry agent covering the given chain names.
func New(chains []string) *Agent {
	return &Agent{chains: chains, retryDelay: make(map[string]int64)}
}

func (a *Agent) GetTasks(pending map[string]struct{}) map[string]func(context.Context) agent.TaskResult[string] {
	tasks := make(map[string]func(context.Context) agent.TaskResult[string])
	for _, chain := range a.chains {
		if _, ok := pending[chain]; ok {
			continue
		}
		chain := chain
		tasks[chain] = func(context.Context) agent.TaskResult[string] {
			return agent.TaskResult[string]{TaskType: chain, Timestamp: time.Now().Unix()}
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
