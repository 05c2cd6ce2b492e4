package store

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/chainwatch/fleetbot/pkg/metrics"
)

const (
	revIndexPrefix = "rev_index_"
	keyPrefix      = "key_"
)

// RetrievalMethod selects how FallbackStore.Get resolves a key to a value.
type RetrievalMethod int

const (
	// Current returns the entry at the current revision, whatever its
	// Ok/Err state.
	Current RetrievalMethod = iota
	// LatestOk walks backward from the current revision looking for the
	// first Ok entry, skipping Err entries along the way.
	LatestOk
)

// FallbackStore is a versioned store layered over a KV: every logical key
// keeps a bounded history of revisions, and reads can either return the
// current revision or fall back through history to the latest successful
// one. It is the Go counterpart to the original FallbackEntryStore, which
// layered the same scheme over sled.
type FallbackStore[T any] struct {
	kv *KV
}

// NewFallbackStore wraps kv with the versioned-entry scheme.
func NewFallbackStore[T any](kv *KV) *FallbackStore[T] {
	return &FallbackStore[T]{kv: kv}
}

func revIndexKey(key string) []byte {
	return []byte(revIndexPrefix + key)
}

func revKey(key string, rev uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], rev)
	return append([]byte(keyPrefix+key+"_rev_"), b[:]...)
}

func (s *FallbackStore[T]) currentRevision(key string) (uint64, bool, error) {
	v, ok, err := s.kv.Get(revIndexKey(key))
	if err != nil || !ok {
		return 0, ok, err
	}
	if len(v) != 8 {
		return 0, false, fmt.Errorf("store: corrupt revision index for %q", key)
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// ContainsKey reports whether key has any revision recorded.
func (s *FallbackStore[T]) ContainsKey(key string) (bool, error) {
	_, ok, err := s.currentRevision(key)
	return ok, err
}

// Get resolves key per method. Current returns a soft KeyDoesNotExist entry
// if the key has never been written. LatestOk walks down from the current
// revision looking for the first Ok entry and hard-fails with an error if
// none of the retained revisions are Ok, including when the key is unknown
// — matching the original's GetOk, which returns
// `anyhow::anyhow!("no ok value found for key {}", key)` rather than an
// in-band error entry.
func (s *FallbackStore[T]) Get(key string, method RetrievalMethod) (Entry[T], error) {
	cur, ok, err := s.currentRevision(key)
	if err != nil {
		return Entry[T]{}, err
	}
	if !ok {
		if method == LatestOk {
			return Entry[T]{}, fmt.Errorf("store: no ok value found for key %s", key)
		}
		return Err[T](KeyDoesNotExist(key)), nil
	}

	switch method {
	case Current:
		return s.readRevision(key, cur)
	case LatestOk:
		idx, found, err := s.indexOfOkResult(key, cur)
		if err != nil {
			return Entry[T]{}, err
		}
		if !found {
			return Entry[T]{}, fmt.Errorf("store: no ok value found for key %s", key)
		}
		return s.readRevision(key, idx)
	default:
		return Entry[T]{}, fmt.Errorf("store: unknown retrieval method %d", method)
	}
}

func (s *FallbackStore[T]) readRevision(key string, rev uint64) (Entry[T], error) {
	raw, ok, err := s.kv.Get(revKey(key, rev))
	if err != nil {
		return Entry[T]{}, err
	}
	if !ok {
		return Err[T](KeyDoesNotExist(key)), nil
	}
	return decodeEntry[T](raw)
}

// indexOfOkResult walks revisions [cur, 0] looking for the first Ok entry.
func (s *FallbackStore[T]) indexOfOkResult(key string, cur uint64) (uint64, bool, error) {
	for i := cur; ; i-- {
		e, err := s.readRevision(key, i)
		if err != nil {
			return 0, false, err
		}
		if e.IsOk() {
			return i, true, nil
		}
		if i == 0 {
			break
		}
	}
	return 0, false, nil
}

// InsertIfNotExists inserts entry at key only if key has no latest-Ok
// revision, or that revision's data differs from entry's. It returns true
// if a new revision was written.
func (s *FallbackStore[T]) InsertIfNotExists(key string, entry Entry[T]) (bool, error) {
	existing, err := s.Get(key, LatestOk)
	if err == nil && existing.sameData(entry) {
		return false, nil
	}
	if err != nil && !isNoOkValueErr(err) {
		return false, err
	}
	if err := s.Insert(key, entry); err != nil {
		return false, err
	}
	return true, nil
}

// isNoOkValueErr reports whether err is the "no ok value found" failure
// Get(key, LatestOk) returns when the key is unknown or carries no Ok
// revision — the signal InsertIfNotExists treats as "go ahead and insert".
func isNoOkValueErr(err error) bool {
	return strings.Contains(err.Error(), "no ok value found for key")
}

// Insert writes entry as the next revision of key, then prunes history
// below the smallest revision still carrying an Ok entry. This mirrors the
// original five-step, non-atomic insert: read current revision, compute the
// next revision (wrapping to 0 on uint64 overflow, which also wipes all
// prior history since the old revisions are no longer reachable from 0),
// serialize and write the new revision, write the updated revision index,
// then clean up.
func (s *FallbackStore[T]) Insert(key string, entry Entry[T]) error {
	cur, ok, err := s.currentRevision(key)
	if err != nil {
		return err
	}

	var next uint64
	wrapped := false
	if !ok {
		next = 0
	} else if cur == math.MaxUint64 {
		next = 0
		wrapped = true
	} else {
		next = cur + 1
	}

	raw, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if err := s.kv.Put(revKey(key, next), raw); err != nil {
		return err
	}

	var idxBuf [8]byte
	binary.BigEndian.PutUint64(idxBuf[:], next)
	if err := s.kv.Put(revIndexKey(key), idxBuf[:]); err != nil {
		return err
	}
	metrics.StoreRevisionsWrittenTotal.WithLabelValues(keyMetricPrefix(key)).Inc()

	if wrapped {
		return s.removeRevisionsAbove(key, next)
	}
	return s.cleanupRevisionHistory(key, next)
}

// removeRevisionsAbove deletes every retained revision of key above keep.
// Used only on the overflow-wrap path, where the new current revision (0)
// is smaller than every previously retained revision. Retained revisions
// form one contiguous run, so it walks up from keep+1 and down from
// MaxUint64, each until the first absent revision.
func (s *FallbackStore[T]) removeRevisionsAbove(key string, keep uint64) error {
	for i := keep + 1; i != 0; i++ {
		removed, err := s.removeRevisionIfPresent(key, i)
		if err != nil {
			return err
		}
		if !removed {
			break
		}
	}
	for i := uint64(math.MaxUint64); i > keep; i-- {
		removed, err := s.removeRevisionIfPresent(key, i)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
	}
	return nil
}

// cleanupRevisionHistory removes every revision below the smallest index
// that still carries an Ok entry, so the store never retains more history
// than is needed to serve LatestOk.
func (s *FallbackStore[T]) cleanupRevisionHistory(key string, cur uint64) error {
	okIdx, found, err := s.indexOfOkResult(key, cur)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if okIdx == 0 {
		return nil
	}
	for i := uint64(0); i < okIdx; i++ {
		if _, err := s.removeRevisionIfPresent(key, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *FallbackStore[T]) removeRevisionIfPresent(key string, rev uint64) (bool, error) {
	prior, err := s.kv.Delete(revKey(key, rev))
	if err != nil {
		return false, err
	}
	removed := prior != nil
	if removed {
		metrics.StoreRevisionsPrunedTotal.WithLabelValues(keyMetricPrefix(key)).Inc()
	}
	return removed, nil
}

// keyMetricPrefix reduces a logical key to its leading dimension (the part
// before the first underscore) so the revision-count metrics stay low
// cardinality even when keys carry per-instance suffixes.
func keyMetricPrefix(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return key[:i]
	}
	return key
}

// RemoveAll deletes every retained revision of key plus its revision index.
func (s *FallbackStore[T]) RemoveAll(key string) error {
	cur, ok, err := s.currentRevision(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	for i := uint64(0); i <= cur; i++ {
		if _, err := s.kv.Delete(revKey(key, i)); err != nil {
			return err
		}
	}
	_, err = s.kv.Delete(revIndexKey(key))
	return err
}

// WatchPrefix subscribes to writes of any revision under keys starting with
// prefix. The original sled-backed store rewrote the caller's prefix to
// key_<prefix> before subscribing so that revision-index writes (which live
// under a disjoint rev_index_ prefix) never leak into the feed; this does
// the same against the KV's raw key space.
func (s *FallbackStore[T]) WatchPrefix(prefix string) (<-chan ChangeEvent, func()) {
	return s.kv.WatchPrefix([]byte(keyPrefix + prefix))
}

// KeyIter yields every key with a current revision, under the given prefix.
func (s *FallbackStore[T]) KeyIter(prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		seen := make(map[string]struct{})
		err := s.kv.ScanPrefix([]byte(revIndexPrefix+prefix), func(k, _ []byte) error {
			key := strings.TrimPrefix(string(k), revIndexPrefix)
			if _, ok := seen[key]; ok {
				return nil
			}
			seen[key] = struct{}{}
			if !yield(key, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && err != errStopIteration {
			yield("", err)
		}
	}
}

// ValueIter yields the current-revision entry for every key under prefix.
func (s *FallbackStore[T]) ValueIter(prefix string) iter.Seq2[Entry[T], error] {
	return func(yield func(Entry[T], error) bool) {
		for key, err := range s.KeyIter(prefix) {
			if err != nil {
				yield(Entry[T]{}, err)
				return
			}
			e, err := s.Get(key, Current)
			if err != nil {
				if !yield(Entry[T]{}, err) {
					return
				}
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// ErrorIter yields only the current-revision entries under prefix whose
// data is an EntryError, paired with that error.
func (s *FallbackStore[T]) ErrorIter(prefix string) iter.Seq2[string, *EntryError] {
	return func(yield func(string, *EntryError) bool) {
		for key, err := range s.KeyIter(prefix) {
			if err != nil {
				continue
			}
			e, err := s.Get(key, Current)
			if err != nil || e.Err == nil {
				continue
			}
			if !yield(key, e.Err) {
				return
			}
		}
	}
}

// errStopIteration is a sentinel used internally to break out of a
// ScanPrefix callback early when a consumer stops ranging over KeyIter.
var errStopIteration = fmt.Errorf("store: iteration stopped")
