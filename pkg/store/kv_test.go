package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T, prefix string) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "test.db"), prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKVPutGet(t *testing.T) {
	kv := openTestKV(t, "")

	_, ok, err := kv.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put([]byte("a"), []byte("1")))
	v, ok, err := kv.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestKVDeleteIdempotent(t *testing.T) {
	kv := openTestKV(t, "")

	require.NoError(t, kv.Put([]byte("a"), []byte("1")))
	prior, err := kv.Delete([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), prior)

	prior, err = kv.Delete([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, prior)
}

func TestKVGlobalPrefixIsolation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shared.db")
	a, err := Open(dir, "a_")
	require.NoError(t, err)
	require.NoError(t, a.Put([]byte("k"), []byte("from-a")))
	// bbolt holds an exclusive file lock per open handle, so a must be
	// closed before the same file can be opened again under b.
	require.NoError(t, a.Close())

	b, err := Open(dir, "b_")
	require.NoError(t, err)
	defer b.Close()

	_, ok, err := b.Get([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok, "b should not see a's key despite sharing a database file")
}

func TestKVScanPrefixOrderAndStrip(t *testing.T) {
	kv := openTestKV(t, "g_")

	require.NoError(t, kv.Put([]byte("task_2"), []byte("v2")))
	require.NoError(t, kv.Put([]byte("task_1"), []byte("v1")))
	require.NoError(t, kv.Put([]byte("other"), []byte("vx")))

	var keys []string
	err := kv.ScanPrefix([]byte("task_"), func(k, v []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"task_1", "task_2"}, keys)
}

func TestKVWatchPrefix(t *testing.T) {
	kv := openTestKV(t, "")

	ch, cancel := kv.WatchPrefix([]byte("task_"))
	defer cancel()

	require.NoError(t, kv.Put([]byte("other"), []byte("x")))
	require.NoError(t, kv.Put([]byte("task_1"), []byte("y")))

	select {
	case ev := <-ch:
		assert.Equal(t, "task_1", ev.Key)
		assert.Equal(t, []byte("y"), ev.Value)
		assert.False(t, ev.Removed)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}

	if _, err := kv.Delete([]byte("task_1")); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-ch:
		assert.True(t, ev.Removed)
	case <-time.After(time.Second):
		t.Fatal("expected a removal event")
	}
}

func TestKVWatchPrefixCancel(t *testing.T) {
	kv := openTestKV(t, "")

	ch, cancel := kv.WatchPrefix([]byte("x"))
	cancel()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")
}
