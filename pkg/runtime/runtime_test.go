package runtime

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainwatch/fleetbot/pkg/store"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	p, err := store.Open(filepath.Join(t.TempDir(), "persistent.db"), "task_store_")
	require.NoError(t, err)
	tmp, err := store.Open(filepath.Join(t.TempDir(), "temporary.db"), "task_store_")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close(); tmp.Close() })
	return New(p, tmp)
}

func TestRuntimeInitIsIdempotent(t *testing.T) {
	r := newTestRuntime(t)
	assert.False(t, r.Initialized())

	var calls int32
	for i := 0; i < 5; i++ {
		r.Init(func() { atomic.AddInt32(&calls, 1) })
	}

	assert.Equal(t, int32(1), calls)
	assert.True(t, r.Initialized())
}

func TestRuntimeStopSetsCancelledWithoutDraining(t *testing.T) {
	r := newTestRuntime(t)
	var drained int32
	r.RegisterStopFunc(func() { atomic.AddInt32(&drained, 1) })

	r.Stop()

	assert.True(t, r.Cancelled())
	assert.Equal(t, int32(0), drained, "Stop must not run registered drain funcs")
}

func TestRuntimeShutdownDrainsRegisteredFuncs(t *testing.T) {
	r := newTestRuntime(t)
	var drained int32
	r.RegisterStopFunc(func() { atomic.AddInt32(&drained, 1) })
	r.RegisterStopFunc(func() { atomic.AddInt32(&drained, 1) })

	r.Shutdown()

	assert.True(t, r.Cancelled())
	assert.Equal(t, int32(2), drained)
}

func TestRuntimeShutdownAbandonsSlowDrain(t *testing.T) {
	r := newTestRuntime(t)
	r.RegisterStopFunc(func() { time.Sleep(5 * time.Second) })

	start := time.Now()
	r.Shutdown()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "Shutdown must not wait past its 1s drain timeout")
}

func TestRuntimeContextCancelsOnStop(t *testing.T) {
	r := newTestRuntime(t)
	ctx, cancel := r.Context(context.Background())
	defer cancel()

	r.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled once Stop runs")
	}
}
