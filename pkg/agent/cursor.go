package agent

import "github.com/chainwatch/fleetbot/pkg/store"

// ContinuationCursorPrefix namespaces the keys used by the continuation
// cursor helpers below, inside whichever store they're given.
const ContinuationCursorPrefix = "continuation_"

// GetNextKey reads the string continuation cursor stored under name, for
// agents that page through an upstream API via an opaque "next page" token.
// Returns ("", false, nil) if no cursor has been recorded yet.
func GetNextKey(s *store.FallbackStore[string], name string) (string, bool, error) {
	e, err := s.Get(ContinuationCursorPrefix+"key_"+name, store.Current)
	if err != nil {
		return "", false, err
	}
	if !e.IsOk() {
		return "", false, nil
	}
	return e.Value, true, nil
}

// SetNextKey records the string continuation cursor for name.
func SetNextKey(s *store.FallbackStore[string], name, next string) error {
	return s.Insert(ContinuationCursorPrefix+"key_"+name, store.Ok(next))
}

// GetNextIndex reads the numeric continuation cursor stored under name, for
// agents that page through an upstream API via a monotonic offset or block
// height. Returns (0, false, nil) if no cursor has been recorded yet.
func GetNextIndex(s *store.FallbackStore[uint64], name string) (uint64, bool, error) {
	e, err := s.Get(ContinuationCursorPrefix+"index_"+name, store.Current)
	if err != nil {
		return 0, false, err
	}
	if !e.IsOk() {
		return 0, false, nil
	}
	return e.Value, true, nil
}

// SetNextIndex records the numeric continuation cursor for name.
func SetNextIndex(s *store.FallbackStore[uint64], name string, next uint64) error {
	return s.Insert(ContinuationCursorPrefix+"index_"+name, store.Ok(next))
}
