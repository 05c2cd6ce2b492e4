package store

import (
	"bytes"
	"sync"
)

// ChangeEvent is delivered to WatchPrefix subscribers, one per revision
// write observed under their prefix.
type ChangeEvent struct {
	Key     string
	Value   []byte
	Removed bool
}

type changeEvent struct {
	insert bool
	key    []byte
	value  []byte
}

// broker fans out raw key/value writes to prefix-scoped subscribers. It is
// the in-process stand-in for sled's native watch_prefix change feed: bbolt
// has no change-feed of its own, so every Put/Delete on a KV publishes here
// instead. Adapted from the teacher's cluster event broker (pkg/events),
// keeping its subscribe/publish/broadcast shape but scoping delivery by key
// prefix instead of event type.
type broker struct {
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

type subscription struct {
	prefix []byte
	ch     chan ChangeEvent
}

func newBroker() *broker {
	return &broker{subs: make(map[*subscription]struct{})}
}

func (b *broker) subscribe(prefix []byte) (<-chan ChangeEvent, func()) {
	sub := &subscription{prefix: append([]byte(nil), prefix...), ch: make(chan ChangeEvent, 64)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

func (b *broker) publish(ev changeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !bytes.HasPrefix(ev.key, sub.prefix) {
			continue
		}
		out := ChangeEvent{Key: string(ev.key), Removed: !ev.insert}
		if ev.insert {
			out.Value = ev.value
		}
		select {
		case sub.ch <- out:
		default:
			// slow subscriber: drop rather than block the writer, matching
			// the teacher broker's full-buffer skip behavior.
		}
	}
}
