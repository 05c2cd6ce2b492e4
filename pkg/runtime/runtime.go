// Package runtime holds the process-wide state a loaded plugin library
// shares with its host: the two KV database handles, a cancellation flag
// that Context turns into context cancellation, and a one-shot init latch.
package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/store"
)

// Runtime is the process-wide state a plugin's Init/Start/Stop/Shutdown
// ABI functions operate on. Exactly one Runtime exists per process; the
// plugin host constructs it before loading any library.
type Runtime struct {
	Persistent *store.KV
	Temporary  *store.KV

	cancelled atomic.Bool
	initOnce  sync.Once
	initDone  atomic.Bool

	mu      sync.Mutex
	stopFns []func()
}

// New constructs a Runtime with its two KV handles populated. It does not
// mark initialization complete — that happens on the first call to Init.
func New(persistent, temporary *store.KV) *Runtime {
	return &Runtime{Persistent: persistent, Temporary: temporary}
}

// Init runs fn exactly once across the Runtime's lifetime, however many
// times Init itself is called.
func (r *Runtime) Init(fn func()) {
	r.initOnce.Do(func() {
		fn()
		r.initDone.Store(true)
	})
}

// Initialized reports whether Init's function has already run.
func (r *Runtime) Initialized() bool {
	return r.initDone.Load()
}

// RegisterStopFunc adds a cleanup function invoked by Shutdown's drain,
// typically a manager's cancel func for its Run(ctx) call.
func (r *Runtime) RegisterStopFunc(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopFns = append(r.stopFns, fn)
}

// Cancelled reports whether Stop or Shutdown has been called.
func (r *Runtime) Cancelled() bool { return r.cancelled.Load() }

// Stop sets the cancellation flag, which cancels any context from Context
// within one 100ms tick (manager loops running under that context then exit
// on their next iteration), but leaves the runtime's resources (KV handles,
// registered stop functions) alive.
func (r *Runtime) Stop() {
	r.cancelled.Store(true)
	log.WithComponent("runtime").Info().Msg("stop requested")
}

// Shutdown sets the cancellation flag, invokes every registered stop
// function, and waits up to one second for them to finish before
// returning regardless.
func (r *Runtime) Shutdown() {
	r.cancelled.Store(true)

	r.mu.Lock()
	fns := append([]func(){}, r.stopFns...)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(len(fns))
		for _, fn := range fns {
			fn := fn
			go func() { defer wg.Done(); fn() }()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		log.WithComponent("runtime").Warn().Msg("shutdown drain timed out after 1s, abandoning remaining workers")
	}
}

// Context returns a context that's cancelled once Stop or Shutdown runs,
// wiring the flag-based cancellation model onto context.Context for
// consumers (like manager.Manager.Run) that expect one.
func (r *Runtime) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if r.Cancelled() {
					cancel()
					return
				}
			}
		}
	}()
	return ctx, cancel
}
