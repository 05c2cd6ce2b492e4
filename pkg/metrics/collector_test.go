package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name   string
	counts map[string]int
}

func (f fakeSource) Name() string              { return f.name }
func (f fakeSource) StateCounts() map[string]int { return f.counts }

func TestCollectorSamplesRegisteredSources(t *testing.T) {
	c := NewCollector(10 * time.Millisecond)
	c.Register(fakeSource{name: "dummy", counts: map[string]int{"pending": 2, "resolved": 5}})

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	require.Eventually(t, func() bool {
		v := testutil.ToFloat64(RegistryStateCount.WithLabelValues("dummy", "pending"))
		return v == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, float64(5), testutil.ToFloat64(RegistryStateCount.WithLabelValues("dummy", "resolved")))
	cancel()
}
