package metrics

import (
	"context"
	"sync"
	"time"
)

// RegistrySource is anything that can report a per-state tally of its task
// registry; *manager.Manager[T] implements it for every T.
type RegistrySource interface {
	Name() string
	StateCounts() map[string]int
}

// Collector periodically samples a set of registry sources into
// RegistryStateCount. Adapted from the teacher's ticker-driven collector:
// a single goroutine wakes on an interval and pulls current values rather
// than reacting to individual state changes.
type Collector struct {
	interval time.Duration

	mu      sync.Mutex
	sources []RegistrySource
}

// NewCollector builds a Collector that samples every interval.
func NewCollector(interval time.Duration) *Collector {
	return &Collector{interval: interval}
}

// Register adds src to the set of sources sampled on every tick.
func (c *Collector) Register(src RegistrySource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, src)
}

// Run samples all registered sources every interval until ctx is
// cancelled.
func (c *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *Collector) collect() {
	c.mu.Lock()
	sources := append([]RegistrySource(nil), c.sources...)
	c.mu.Unlock()

	for _, src := range sources {
		for state, count := range src.StateCounts() {
			RegistryStateCount.WithLabelValues(src.Name(), state).Set(float64(count))
		}
	}
}
