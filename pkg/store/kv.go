package store

import (
	"bytes"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Error wraps a failure from the backing bbolt database. All store-level
// failures are returned as *Error so callers can errors.As into it without
// caring which bbolt call underneath actually failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

var bucketName = []byte("kv")

// KV is a thin wrapper around a single bbolt bucket. Every key passed in is
// rewritten to globalPrefix+key before it reaches the database; every key
// handed back out of a scan has the prefix stripped. KV is cheap to copy:
// copies share the same *bolt.DB handle and bucket name, mirroring how the
// original sled-backed adapter shared its sled.Db across clones.
type KV struct {
	db           *bolt.DB
	globalPrefix string
	broker       *broker
}

// Open opens (creating if necessary) a bbolt database at path and returns a
// KV scoped to globalPrefix.
func Open(path, globalPrefix string) (*KV, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &Error{Op: "create bucket", Err: err}
	}
	return &KV{db: db, globalPrefix: globalPrefix, broker: newBroker()}, nil
}

// Close closes the underlying database. All copies sharing this handle
// become unusable once Close returns.
func (kv *KV) Close() error {
	if err := kv.db.Close(); err != nil {
		return &Error{Op: "close", Err: err}
	}
	return nil
}

func (kv *KV) prefixed(key []byte) []byte {
	return append([]byte(kv.globalPrefix), key...)
}

func (kv *KV) strip(key []byte) ([]byte, bool) {
	p := []byte(kv.globalPrefix)
	if !bytes.HasPrefix(key, p) {
		return nil, false
	}
	return key[len(p):], true
}

// Get returns the value stored at key, or (nil, false) if it is absent.
func (kv *KV) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := kv.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(kv.prefixed(key))
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, &Error{Op: "get", Err: err}
	}
	return out, out != nil, nil
}

// Contains reports whether key is present.
func (kv *KV) Contains(key []byte) (bool, error) {
	_, ok, err := kv.Get(key)
	return ok, err
}

// Put writes value at key and notifies any subscriber whose watched prefix
// matches the (unprefixed) key.
func (kv *KV) Put(key, value []byte) error {
	err := kv.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(kv.prefixed(key), value)
	})
	if err != nil {
		return &Error{Op: "put", Err: err}
	}
	kv.broker.publish(changeEvent{insert: true, key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

// Delete removes key, returning the prior value if any.
func (kv *KV) Delete(key []byte) ([]byte, error) {
	prior, ok, err := kv.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	err = kv.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(kv.prefixed(key))
	})
	if err != nil {
		return nil, &Error{Op: "delete", Err: err}
	}
	kv.broker.publish(changeEvent{insert: false, key: append([]byte(nil), key...)})
	return prior, nil
}

// ScanPrefix calls fn for every key/value pair whose (unprefixed) key starts
// with prefix, in ascending byte order. fn's slices are only valid for the
// duration of the call, matching bbolt's own cursor-validity rules.
func (kv *KV) ScanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	full := kv.prefixed(prefix)
	err := kv.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Seek(full); k != nil && bytes.HasPrefix(k, full); k, v = c.Next() {
			stripped, ok := kv.strip(k)
			if !ok {
				continue
			}
			if err := fn(stripped, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &Error{Op: "scan", Err: err}
	}
	return nil
}

// WatchPrefix subscribes to every Put/Delete whose unprefixed key starts
// with prefix. The returned cancel func must be called to release the
// subscription; events stop arriving immediately after.
func (kv *KV) WatchPrefix(prefix []byte) (<-chan ChangeEvent, func()) {
	return kv.broker.subscribe(prefix)
}
