// Package manager implements the generic agent scheduler: given an
// agent.Agent[T], it drives that agent's task set to completion forever,
// retrying failures with exponential backoff and recording per-task state
// in a registry.
package manager

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chainwatch/fleetbot/pkg/agent"
	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/metrics"
)

// pollInterval is how often both run loops wake up to check the delay
// queue, the completed-worker pool, and the cancellation signal.
const pollInterval = 100 * time.Millisecond

// Manager owns one agent and keeps its declared task set running. T is the
// agent's task instance type, shared with the agent.Agent[T] it drives.
type Manager[T comparable] struct {
	id   string
	name string

	agentMu sync.RWMutex
	agent   agent.Agent[T]

	pool       *joinSet[T]
	delayQueue *delayQueue[T]

	registryMu sync.Mutex
	registry   map[T]agent.TaskState

	logger zerolog.Logger
}

// New builds a Manager around a. name identifies the agent in logs and
// metrics (e.g. "chain-registry", "dummy").
func New[T comparable](name string, a agent.Agent[T]) *Manager[T] {
	return &Manager[T]{
		id:         uuid.NewString(),
		name:       name,
		agent:      a,
		pool:       newJoinSet[T](),
		delayQueue: newDelayQueue[T](),
		registry:   make(map[T]agent.TaskState),
		logger:     log.WithComponent("manager").With().Str("agent", name).Logger(),
	}
}

// Name returns the agent name this manager was constructed with.
func (m *Manager[T]) Name() string { return m.name }

// Registry returns a snapshot of the current task-instance states, for
// diagnostics and metrics collection. Safe for concurrent use.
func (m *Manager[T]) Registry() map[T]agent.TaskState {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()
	snap := make(map[T]agent.TaskState, len(m.registry))
	for k, v := range m.registry {
		snap[k] = v
	}
	return snap
}

// StateCounts tallies the registry by TaskState kind, for metrics
// collection. Implements metrics.RegistrySource.
func (m *Manager[T]) StateCounts() map[string]int {
	reg := m.Registry()
	counts := make(map[string]int)
	for _, st := range reg {
		counts[st.String()]++
	}
	return counts
}

func (m *Manager[T]) pendingSet() map[T]struct{} {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()
	pending := make(map[T]struct{})
	for k, v := range m.registry {
		if _, ok := v.IsPending(); ok {
			pending[k] = struct{}{}
		}
	}
	return pending
}

// spawnAll enumerates the agent's current task set (excluding pending) and
// spawns each returned closure into the pool, recording it Pending.
func (m *Manager[T]) spawnAll(ctx context.Context) {
	m.agentMu.RLock()
	tasks := m.agent.GetTasks(m.pendingSet())
	m.agentMu.RUnlock()

	for taskType, fn := range tasks {
		taskType := taskType
		fn := fn
		id := m.pool.Spawn(ctx, func(ctx context.Context) (agent.TaskResult[T], error) {
			timer := metrics.NewTimer()
			result := fn(ctx)
			timer.ObserveDurationVec(metrics.TaskRunDuration, m.name)
			return result, nil
		})
		m.registryMu.Lock()
		m.registry[taskType] = agent.Pending(id)
		m.registryMu.Unlock()
	}
	metrics.TasksInFlight.WithLabelValues(m.name).Set(float64(len(m.pendingSet())))
}

// Run drives the manager until ctx is cancelled. It launches the two
// cooperating loops described in the scheduling model (dispatcher and
// completion handler) and blocks until both have exited and the pool has
// drained.
func (m *Manager[T]) Run(ctx context.Context) {
	m.logger.Info().Str("manager_id", m.id).Msg("agent manager starting")

	m.spawnAll(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); m.runDispatcher(ctx) }()
	go func() { defer wg.Done(); m.runCompletionHandler(ctx) }()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.pool.Shutdown(shutdownCtx)

	m.logger.Info().Str("manager_id", m.id).Msg("agent manager stopped")
}

// runDispatcher is Loop A: it waits for delay-queue expiries, updates the
// registry with their outcome, and re-enumerates the agent's task set.
func (m *Manager[T]) runDispatcher(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if result, ok := m.delayQueue.PollExpired(pollInterval); ok {
			m.registryMu.Lock()
			if result.Err != nil {
				m.registry[result.TaskType] = agent.Failed(result.Timestamp)
			} else {
				m.registry[result.TaskType] = agent.Resolved(result.Timestamp)
			}
			m.registryMu.Unlock()

			m.spawnAll(ctx)
		}

		time.Sleep(pollInterval)
	}
}

// runCompletionHandler is Loop B: it drains finished workers, applies
// backoff or interval-based re-scheduling, and records aborts.
func (m *Manager[T]) runCompletionHandler(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		for _, o := range m.pool.PollCompleted() {
			m.handleCompletion(o)
		}

		time.Sleep(pollInterval)
	}
}

func (m *Manager[T]) handleCompletion(o outcome[T]) {
	if o.cancelled || o.panicked {
		m.handleAbort(o)
		return
	}

	result := o.value
	if result.Err == nil {
		m.agentMu.Lock()
		m.agent.ResetRetryDelay(result.TaskType)
		interval := m.agent.GetUpdateIntervalSeconds(result.TaskType)
		m.agentMu.Unlock()

		m.delayQueue.Push(result, interval)
		metrics.TaskOutcomesTotal.WithLabelValues(m.name, "resolved").Inc()
		metrics.RetryDelaySeconds.WithLabelValues(m.name).Set(0)
		m.logger.Debug().Interface("task", result.TaskType).Msg("task resolved, re-queued")
		return
	}

	m.agentMu.Lock()
	agent.ExponentialBackoffWithJitter[T](m.agent, result.TaskType)
	retryDelay := m.agent.GetRetryDelaySeconds(result.TaskType)
	m.agentMu.Unlock()

	m.delayQueue.Push(result, retryDelay)
	metrics.TaskOutcomesTotal.WithLabelValues(m.name, "failed").Inc()
	metrics.RetryDelaySeconds.WithLabelValues(m.name).Set(float64(retryDelay))
	m.logger.Warn().Interface("task", result.TaskType).Err(result.Err).Int64("retry_delay_s", retryDelay).Msg("task failed, backing off")
}

// handleAbort locates the registry entry whose Pending worker id matches o
// and transitions it to Cancelled or Panicked.
func (m *Manager[T]) handleAbort(o outcome[T]) {
	m.registryMu.Lock()
	defer m.registryMu.Unlock()

	for taskType, state := range m.registry {
		id, pending := state.IsPending()
		if !pending || id != o.id {
			continue
		}
		now := time.Now().Unix()
		if o.panicked {
			m.registry[taskType] = agent.Panicked(now)
			metrics.TaskOutcomesTotal.WithLabelValues(m.name, "panicked").Inc()
			m.logger.Error().Interface("task", taskType).Err(o.err).Msg("task panicked")
		} else {
			m.registry[taskType] = agent.Cancelled(now)
			metrics.TaskOutcomesTotal.WithLabelValues(m.name, "cancelled").Inc()
			m.logger.Debug().Interface("task", taskType).Msg("task cancelled")
		}
		return
	}
}
