/*
Package manager implements the generic agent scheduler.

A Manager[T] owns exactly one agent.Agent[T] and drives its declared task
set forever: it enumerates pending work, runs it concurrently in a joinSet
(this package's goroutine-pool stand-in for Tokio's JoinSet), records
per-task-instance state in a registry, and re-queues completions through a
timer-driven delayQueue — on their configured update interval after
success, or after an exponentially-growing backoff delay after failure.

Run spawns two loops that cooperate without ever holding more than one of
{agent, pool, delayQueue} locked at a time:

  - the dispatcher polls the delay queue, updates the registry, and asks
    the agent for its current task set;
  - the completion handler drains finished workers from the pool and
    decides whether to re-queue, back off, or mark an abort.

Both loops poll every 100ms and exit once their context is cancelled; the
pool is then given one second to drain before Run returns.
*/
package manager
