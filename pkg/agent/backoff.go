package agent

import "math/rand/v2"

// maxRetryDelaySeconds caps the backoff ceiling regardless of how many
// consecutive failures an agent has seen.
const maxRetryDelaySeconds = 300

// ExponentialBackoffWithJitter doubles task's current retry delay, adds a
// random jitter in [0, delay/2], clamps to maxRetryDelaySeconds, and writes
// the result back via the agent's setter. It is a free function rather than
// an interface method because Go has no default interface methods; every
// agent gets this behavior for free instead of reimplementing it.
func ExponentialBackoffWithJitter[T comparable](a Agent[T], task T) {
	delay := a.GetRetryDelaySeconds(task)
	jitter := int64(0)
	if delay > 0 {
		jitter = rand.Int64N(delay/2 + 1)
	}
	next := delay*2 + jitter
	if next > maxRetryDelaySeconds {
		next = maxRetryDelaySeconds
	}
	a.SetRetryDelaySeconds(task, next)
}
