package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/metrics"
	"github.com/chainwatch/fleetbot/pkg/store"
)

// sharedLibExt is the file extension plugin libraries are scanned for.
// Go's plugin package only builds and opens shared objects on Linux, the
// only platform this host targets.
const sharedLibExt = ".so"

// Host scans a directory for plugin shared libraries, loads each one's
// lifecycle ABI, and watches the directory for changes to hot-reload them.
// Go's plugin package has no unload primitive (no dlclose equivalent), so
// a "reload" shuts the old plugin down, drops the Go-level reference, and
// opens the replacement fresh — the process keeps the old code's pages
// mapped for its lifetime, a known upstream limitation this host does not
// try to work around.
type Host struct {
	dir        string
	persistent *store.KV
	temporary  *store.KV

	mu     sync.Mutex
	loaded map[string]abi
}

// NewHost builds a Host that will load plugins from dir against the given
// store handles. Call Run to start it.
func NewHost(dir string, persistent, temporary *store.KV) *Host {
	return &Host{
		dir:        dir,
		persistent: persistent,
		temporary:  temporary,
		loaded:     make(map[string]abi),
	}
}

// Run scans dir for plugin libraries, loads and starts each one, then
// watches dir non-recursively for changes until ctx is cancelled. It
// returns once the watch loop exits, after shutting down every loaded
// plugin.
func (h *Host) Run(ctx context.Context) error {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return fmt.Errorf("plugin host: read dir %s: %w", h.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sharedLibExt) {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		if err := h.load(path); err != nil {
			log.WithComponent("plugin-host").Error().Err(err).Str("path", path).Msg("failed to load plugin")
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("plugin host: new watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(h.dir); err != nil {
		return fmt.Errorf("plugin host: watch %s: %w", h.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdownAll()
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				h.shutdownAll()
				return nil
			}
			h.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				h.shutdownAll()
				return nil
			}
			log.WithComponent("plugin-host").Error().Err(err).Msg("watcher error")
		}
	}
}

func (h *Host) handleEvent(ev fsnotify.Event) {
	if !strings.HasSuffix(ev.Name, sharedLibExt) {
		return
	}
	logger := log.WithComponent("plugin-host")

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		h.unload(ev.Name)
		if err := h.load(ev.Name); err != nil {
			logger.Error().Err(err).Str("path", ev.Name).Msg("failed to (re)load plugin")
			return
		}
		logger.Info().Str("path", ev.Name).Msg("plugin loaded")
	case ev.Op&fsnotify.Remove != 0:
		h.unload(ev.Name)
		logger.Info().Str("path", ev.Name).Msg("plugin unloaded")
	}
}

// load opens path, resolves its ABI symbols, calls Init then Start, and
// records it under path.
func (h *Host) load(path string) error {
	p, err := goplugin.Open(path)
	if err != nil {
		return fmt.Errorf("plugin host: open %s: %w", path, err)
	}

	a, err := resolveABI(p)
	if err != nil {
		return fmt.Errorf("plugin host: resolve symbols in %s: %w", path, err)
	}

	a.Init(h.persistent, h.temporary)
	a.Start()

	h.mu.Lock()
	h.loaded[path] = a
	h.mu.Unlock()
	metrics.PluginsLoaded.Set(float64(h.count()))
	return nil
}

// unload shuts down the plugin loaded from path, if any, and drops the
// Go-level reference. It does not and cannot unmap the library's code.
func (h *Host) unload(path string) {
	h.mu.Lock()
	a, ok := h.loaded[path]
	if ok {
		delete(h.loaded, path)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	a.Shutdown()
	metrics.PluginsLoaded.Set(float64(h.count()))
}

func (h *Host) shutdownAll() {
	h.mu.Lock()
	paths := make([]string, 0, len(h.loaded))
	for path := range h.loaded {
		paths = append(paths, path)
	}
	h.mu.Unlock()

	for _, path := range paths {
		h.unload(path)
	}
}

func (h *Host) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.loaded)
}

func resolveABI(p *goplugin.Plugin) (abi, error) {
	initSym, err := p.Lookup(symbolInit)
	if err != nil {
		return abi{}, err
	}
	startSym, err := p.Lookup(symbolStart)
	if err != nil {
		return abi{}, err
	}
	stopSym, err := p.Lookup(symbolStop)
	if err != nil {
		return abi{}, err
	}
	shutdownSym, err := p.Lookup(symbolShutdown)
	if err != nil {
		return abi{}, err
	}

	init, ok := initSym.(func(*store.KV, *store.KV))
	if !ok {
		return abi{}, fmt.Errorf("symbol %s has unexpected type %T", symbolInit, initSym)
	}
	start, ok := startSym.(func())
	if !ok {
		return abi{}, fmt.Errorf("symbol %s has unexpected type %T", symbolStart, startSym)
	}
	stop, ok := stopSym.(func())
	if !ok {
		return abi{}, fmt.Errorf("symbol %s has unexpected type %T", symbolStop, stopSym)
	}
	shutdown, ok := shutdownSym.(func())
	if !ok {
		return abi{}, fmt.Errorf("symbol %s has unexpected type %T", symbolShutdown, shutdownSym)
	}

	return abi{Init: init, Start: start, Stop: stop, Shutdown: shutdown}, nil
}
