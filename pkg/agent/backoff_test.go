package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeAgent struct {
	delay map[string]int64
}

func newFakeAgent() *fakeAgent { return &fakeAgent{delay: make(map[string]int64)} }

func (f *fakeAgent) GetTasks(map[string]struct{}) map[string]func(context.Context) TaskResult[string] {
	return nil
}
func (f *fakeAgent) GetUpdateIntervalSeconds(string) int64     { return 60 }
func (f *fakeAgent) GetRetryDelaySeconds(task string) int64    { return f.delay[task] }
func (f *fakeAgent) SetRetryDelaySeconds(task string, s int64) { f.delay[task] = s }
func (f *fakeAgent) ResetRetryDelay(task string)               { f.delay[task] = 1 }

func TestExponentialBackoffDoublesAndClamps(t *testing.T) {
	a := newFakeAgent()
	a.delay["t"] = 1

	for i := 0; i < 20; i++ {
		ExponentialBackoffWithJitter[string](a, "t")
		assert.LessOrEqual(t, a.delay["t"], int64(maxRetryDelaySeconds))
	}
	assert.Equal(t, int64(maxRetryDelaySeconds), a.delay["t"])
}

func TestExponentialBackoffFromZero(t *testing.T) {
	a := newFakeAgent()
	a.delay["t"] = 0

	ExponentialBackoffWithJitter[string](a, "t")
	assert.GreaterOrEqual(t, a.delay["t"], int64(0))
	assert.LessOrEqual(t, a.delay["t"], int64(1))
}
