// Package proposalfetch schedules periodic discovery of new governance
// proposals. Collection logic is not yet implemented; GetTasks enumerates
// one task instance per configured dimension and immediately resolves it.
package proposalfetch

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

const (
	updateIntervalSeconds    = 60 * 5
	initialRetryDelaySeconds = 60
)

// Agent polls for proposals on one task instance per configured chain.
type Agent struct {
	chains []string

	mu         sync.Mutex
	retryDelay map[string]int64
}

// New builds a proposal-fetch agent covering the given chain names.
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
