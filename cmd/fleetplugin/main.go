// Command fleetplugin builds as a Go shared library (buildmode=plugin)
// hosting the cataloged sample agents behind one manager each. It exports
// the Init/Start/Stop/Shutdown ABI pkg/plugin's host resolves by symbol
// name, mirroring how the original Rust plugin's start() instantiated one
// AgentManager per compiled-in agent.
package main

import (
	"context"
	"sync"
	"time"

	"github.com/chainwatch/fleetbot/internal/agents/chainregistry"
	"github.com/chainwatch/fleetbot/internal/agents/dummy"
	"github.com/chainwatch/fleetbot/internal/agents/frauddetection"
	"github.com/chainwatch/fleetbot/internal/agents/params"
	"github.com/chainwatch/fleetbot/internal/agents/pool"
	"github.com/chainwatch/fleetbot/internal/agents/proposalfetch"
	"github.com/chainwatch/fleetbot/internal/agents/proposalview"
	"github.com/chainwatch/fleetbot/internal/agents/tallyresults"
	"github.com/chainwatch/fleetbot/internal/agents/validators"
	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/manager"
	"github.com/chainwatch/fleetbot/pkg/metrics"
	"github.com/chainwatch/fleetbot/pkg/store"
)

// trackedChains is a placeholder fleet roster; a real deployment would
// source this from the plugin's own config rather than hardcoding it.
var trackedChains = []string{"cosmoshub", "osmosis"}

var (
	mu         sync.Mutex
	persistent *store.KV
	temporary  *store.KV
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	collector  *metrics.Collector
)

// Init stores the runtime's database handles for Start to use. Only the
// first call takes effect; later calls are no-ops.
func Init(p, t *store.KV) {
	mu.Lock()
	defer mu.Unlock()
	if persistent != nil {
		return
	}
	persistent = p
	temporary = t
}

// Start instantiates one manager per cataloged agent and runs each in its
// own goroutine until Stop or Shutdown is called. It is a no-op before
// Init has been called.
func Start() {
	mu.Lock()
	defer mu.Unlock()
	if cancel != nil {
		return // already started
	}
	if persistent == nil {
		return // not initialized
	}

	ctx, c := context.WithCancel(context.Background())
	cancel = c

	entryStore := store.NewFallbackStore[string](persistent)

	collector = metrics.NewCollector(5 * time.Second)
	managers := []*manager.Manager[string]{
		manager.New("chain-registry", chainregistry.New(trackedChains)),
		manager.New("params", params.New(trackedChains)),
		manager.New("tally-results", tallyresults.New(trackedChains)),
		manager.New("proposal-fetch", proposalfetch.New(trackedChains)),
		manager.New("proposal-view", proposalview.New(entryStore)),
		manager.New("validators", validators.New(trackedChains)),
		manager.New("pool", pool.New(trackedChains)),
		manager.New("fraud-detection", frauddetection.New()),
		manager.New("dummy", dummy.New(entryStore)),
	}

	for _, m := range managers {
		collector.Register(m)
		wg.Add(1)
		go func(m *manager.Manager[string]) {
			defer wg.Done()
			m.Run(ctx)
		}(m)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		collector.Run(ctx)
	}()

	log.WithComponent("fleetplugin").Info().Int("managers", len(managers)).Msg("fleet started")
}

// Stop signals every running manager to wind down, without waiting for
// them to finish.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Shutdown stops every manager and blocks until all of them have returned.
func Shutdown() {
	Stop()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	cancel = nil
}

func main() {}
