// Package frauddetection classifies newly tallied proposals for fraud
// signals. Its single task instance has a zero update interval and a zero
// initial retry delay, so it runs continuously rather than being polled:
// the task closure blocks until cancelled, so this 0-interval agent never
// busy-loops the completion handler. The manager itself does not treat
// 0-interval tasks specially. The closure performs no classification; it
// only waits on ctx.
package frauddetection

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/pkg/agent"
)

// TaskName is the single, continuously-running task instance.
const TaskName = "fraud-detection"

const (
	updateIntervalSeconds    = 0
	initialRetryDelaySeconds = 0
)

// Agent continuously classifies tallied proposals via a single task
// instance.
type Agent struct {
	mu         sync.Mutex
	retryDelay int64
}

// New builds a fraud-detection agent.
func New() *Agent {
	return &Agent{retryDelay: initialRetryDelaySeconds}
}

func (a *Agent) GetTasks(pending map[string]struct{}) map[string]func(context.Context) agent.TaskResult[string] {
	if _, ok := pending[TaskName]; ok {
		return map[string]func(context.Context) agent.TaskResult[string]{}
	}
	return map[string]func(context.Context) agent.TaskResult[string]{
		TaskName: func(ctx context.Context) agent.TaskResult[string] {
			<-ctx.Done()
			return agent.TaskResult[string]{TaskType: TaskName, Timestamp: time.Now().Unix()}
		},
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
