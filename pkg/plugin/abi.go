package plugin

import "github.com/chainwatch/fleetbot/pkg/store"

// Symbol names every plugin shared library must export, resolved via
// (*plugin.Plugin).Lookup.
const (
	symbolInit     = "Init"
	symbolStart    = "Start"
	symbolStop     = "Stop"
	symbolShutdown = "Shutdown"
)

// InitFunc is the signature a plugin's exported Init symbol must have.
type InitFunc func(persistent, temporary *store.KV)

// LifecycleFunc is the signature shared by Start, Stop, and Shutdown.
type LifecycleFunc func()

// abi bundles the four resolved symbols for one loaded library.
type abi struct {
	Init     InitFunc
	Start    LifecycleFunc
	Stop     LifecycleFunc
	Shutdown LifecycleFunc
}
