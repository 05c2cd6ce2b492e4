// Package agent defines the contract every scheduled data-collection agent
// implements, plus the shared task-result and task-state vocabulary the
// manager package drives agents through.
package agent

import "context"

// Agent is the contract a scheduled agent implements. T is the agent's task
// instance type: an opaque, comparable identifier the manager never
// interprets, typically composed of the dimensions the agent iterates over
// (e.g. a chain name and a proposal status).
type Agent[T comparable] interface {
	// GetTasks enumerates every task instance the agent currently wants
	// running, excluding anything already in pending. The returned map's
	// values are closures that fully own the state they need; the manager
	// may run any of them on any goroutine. GetTasks must be idempotent
	// within a single call and may read shared stores to discover new
	// dimensions, but must not block on anything but that read.
	GetTasks(pending map[T]struct{}) map[T]func(context.Context) TaskResult[T]

	// GetUpdateIntervalSeconds is how long after a successful completion of
	// task the manager waits before re-enqueuing it.
	GetUpdateIntervalSeconds(task T) int64

	// GetRetryDelaySeconds is the current backoff delay for task.
	GetRetryDelaySeconds(task T) int64

	// SetRetryDelaySeconds overwrites the backoff delay for task.
	SetRetryDelaySeconds(task T, seconds int64)

	// ResetRetryDelay restores task's backoff delay to the agent's
	// configured baseline.
	ResetRetryDelay(task T)
}

// TaskResult is what a task closure hands back to the manager, and what
// travels through the delay queue while waiting to be re-spawned.
type TaskResult[T comparable] struct {
	TaskType  T
	Err       error
	Timestamp int64
}

// TaskState is the lifecycle state the manager's registry tracks per task
// instance. Exactly one of these holds at any time.
type TaskState struct {
	kind      taskStateKind
	workerID  uint64
	timestamp int64
}

type taskStateKind int

const (
	stateKindPending taskStateKind = iota
	stateKindResolved
	stateKindFailed
	stateKindCancelled
	stateKindPanicked
)

// Pending marks a task instance as currently running under workerID.
func Pending(workerID uint64) TaskState {
	return TaskState{kind: stateKindPending, workerID: workerID}
}

// Resolved marks a task instance's last outcome as a success at ts.
func Resolved(ts int64) TaskState { return TaskState{kind: stateKindResolved, timestamp: ts} }

// Failed marks a task instance's last outcome as an error at ts.
func Failed(ts int64) TaskState { return TaskState{kind: stateKindFailed, timestamp: ts} }

// Cancelled marks a task instance's worker as cooperatively cancelled at ts.
func Cancelled(ts int64) TaskState { return TaskState{kind: stateKindCancelled, timestamp: ts} }

// Panicked marks a task instance's worker as having aborted via a recovered
// panic at ts.
func Panicked(ts int64) TaskState { return TaskState{kind: stateKindPanicked, timestamp: ts} }

// IsPending reports whether s is the Pending state, and if so the worker id
// that's running it.
func (s TaskState) IsPending() (uint64, bool) {
	return s.workerID, s.kind == stateKindPending
}

// Timestamp returns the state's associated timestamp; zero for Pending.
func (s TaskState) Timestamp() int64 { return s.timestamp }

// String renders the state kind for logging.
func (s TaskState) String() string {
	switch s.kind {
	case stateKindPending:
		return "pending"
	case stateKindResolved:
		return "resolved"
	case stateKindFailed:
		return "failed"
	case stateKindCancelled:
		return "cancelled"
	case stateKindPanicked:
		return "panicked"
	default:
		return "unknown"
	}
}
