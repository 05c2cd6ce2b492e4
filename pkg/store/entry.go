package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
	"time"
)

// EntryErrorKind tags the shape of an in-band entry-level error.
type EntryErrorKind int

const (
	// KindNotYetResolved marks a key reserved for a result that hasn't
	// landed yet.
	KindNotYetResolved EntryErrorKind = iota
	// KindKeyDoesNotExist is synthesized by Get when no revision exists.
	KindKeyDoesNotExist
	// KindEntryReserved marks a key an agent has claimed but not written.
	KindEntryReserved
	// KindError is a generic agent- or store-level failure message.
	KindError
)

// EntryError is the error half of the Ok/Err sum stored inside an Entry. It
// implements error so callers can treat Entry.Err like any other Go error.
type EntryError struct {
	Kind EntryErrorKind
	Text string
}

func (e *EntryError) Error() string {
	switch e.Kind {
	case KindNotYetResolved:
		return fmt.Sprintf("not yet resolved: %s", e.Text)
	case KindKeyDoesNotExist:
		return fmt.Sprintf("key does not exist: %s", e.Text)
	case KindEntryReserved:
		return fmt.Sprintf("entry reserved: %s", e.Text)
	default:
		return e.Text
	}
}

// NotYetResolved builds an EntryError of kind KindNotYetResolved.
func NotYetResolved(key string) *EntryError { return &EntryError{Kind: KindNotYetResolved, Text: key} }

// KeyDoesNotExist builds an EntryError of kind KindKeyDoesNotExist.
func KeyDoesNotExist(key string) *EntryError { return &EntryError{Kind: KindKeyDoesNotExist, Text: key} }

// EntryReserved builds an EntryError of kind KindEntryReserved.
func EntryReserved(key string) *EntryError { return &EntryError{Kind: KindEntryReserved, Text: key} }

// NewError builds a generic EntryError carrying text.
func NewError(text string) *EntryError { return &EntryError{Kind: KindError, Text: text} }

// Entry is the unit stored in the versioned store: either a value of type T
// or a tagged EntryError, plus the insert timestamp. Two Entry values are
// considered equal (see Equal) iff their data compares equal; Timestamp is
// ignored, matching the original sled-backed store's equality contract.
type Entry[T any] struct {
	Value     T
	Err       *EntryError
	Timestamp int64
}

// Ok builds a successful Entry stamped with the current time.
func Ok[T any](v T) Entry[T] {
	return Entry[T]{Value: v, Timestamp: time.Now().Unix()}
}

// Err builds a failed Entry stamped with the current time.
func Err[T any](e *EntryError) Entry[T] {
	return Entry[T]{Err: e, Timestamp: time.Now().Unix()}
}

// IsOk reports whether the entry carries a successful value.
func (e Entry[T]) IsOk() bool { return e.Err == nil }

// sameData reports whether e and other carry the same logical payload,
// ignoring Timestamp. Used by InsertIfNotExists to decide whether a write
// is actually new.
func (e Entry[T]) sameData(other Entry[T]) bool {
	if (e.Err == nil) != (other.Err == nil) {
		return false
	}
	if e.Err != nil {
		return e.Err.Kind == other.Err.Kind && e.Err.Text == other.Err.Text
	}
	return reflect.DeepEqual(e.Value, other.Value)
}

// wireEntry is the gob-friendly representation of Entry[T]: gob cannot
// encode a generic struct directly when T varies across registrations, so
// encode/decode funnel through this fixed shape per call site instead.
type wireEntry struct {
	HasErr    bool
	ErrKind   EntryErrorKind
	ErrText   string
	Timestamp int64
	Value     []byte // gob-encoded T, empty when HasErr
}

func encodeEntry[T any](e Entry[T]) ([]byte, error) {
	w := wireEntry{Timestamp: e.Timestamp}
	if e.Err != nil {
		w.HasErr = true
		w.ErrKind = e.Err.Kind
		w.ErrText = e.Err.Text
	} else {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(e.Value); err != nil {
			return nil, fmt.Errorf("encode entry value: %w", err)
		}
		w.Value = buf.Bytes()
	}
	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(w); err != nil {
		return nil, fmt.Errorf("encode entry envelope: %w", err)
	}
	return out.Bytes(), nil
}

func decodeEntry[T any](data []byte) (Entry[T], error) {
	var w wireEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return Entry[T]{}, fmt.Errorf("decode entry envelope: %w", err)
	}
	if w.HasErr {
		return Entry[T]{Err: &EntryError{Kind: w.ErrKind, Text: w.ErrText}, Timestamp: w.Timestamp}, nil
	}
	var v T
	if len(w.Value) > 0 {
		if err := gob.NewDecoder(bytes.NewReader(w.Value)).Decode(&v); err != nil {
			return Entry[T]{}, fmt.Errorf("decode entry value: %w", err)
		}
	}
	return Entry[T]{Value: v, Timestamp: w.Timestamp}, nil
}
