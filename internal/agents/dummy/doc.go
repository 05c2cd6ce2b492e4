// Package dummy is a reference agent used in integration tests and as a
// template for new agents: single task instance, 3s update interval, 1s
// initial retry delay, alternates success and failure.
package dummy
