/*
Package agent defines the contract a scheduled data-collection agent
implements (Agent[T]), the per-task-instance state machine the manager
package drives agents through (TaskState, TaskResult[T]), the shared
exponential-backoff-with-jitter helper every agent gets for free, and a
pair of continuation-cursor helpers for agents that page through an
upstream API.
*/
package agent
