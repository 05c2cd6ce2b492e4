package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFallbackStore(t *testing.T) *FallbackStore[string] {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "fallback.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewFallbackStore[string](kv)
}

func TestFallbackGetMissingKey(t *testing.T) {
	s := newTestFallbackStore(t)

	e, err := s.Get("nope", Current)
	require.NoError(t, err)
	assert.False(t, e.IsOk())
	assert.Equal(t, KindKeyDoesNotExist, e.Err.Kind)
}

func TestFallbackInsertAndGetCurrent(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Ok[string]("v1")))
	require.NoError(t, s.Insert("k", Ok[string]("v2")))

	e, err := s.Get("k", Current)
	require.NoError(t, err)
	require.True(t, e.IsOk())
	assert.Equal(t, "v2", e.Value)
}

func TestFallbackGetLatestOkSkipsErrRevisions(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Ok[string]("good")))
	require.NoError(t, s.Insert("k", Err[string](NewError("boom"))))
	require.NoError(t, s.Insert("k", Err[string](NewError("boom again"))))

	cur, err := s.Get("k", Current)
	require.NoError(t, err)
	assert.False(t, cur.IsOk())

	ok, err := s.Get("k", LatestOk)
	require.NoError(t, err)
	require.True(t, ok.IsOk())
	assert.Equal(t, "good", ok.Value)
}

func TestFallbackGetLatestOkNoneFound(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Err[string](NewError("boom"))))

	_, err := s.Get("k", LatestOk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ok value found for key k")
}

func TestFallbackGetLatestOkUnknownKeyFails(t *testing.T) {
	s := newTestFallbackStore(t)

	_, err := s.Get("nope", LatestOk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ok value found for key nope")
}

func TestFallbackCleanupPrunesBelowLatestOk(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Ok[string]("v0")))
	require.NoError(t, s.Insert("k", Ok[string]("v1")))
	require.NoError(t, s.Insert("k", Err[string](NewError("transient"))))

	// Revision 0 should have been pruned once revision 1 became the latest
	// Ok; after revision 2 (an error) was appended, only revision 1 (the
	// latest Ok) and revision 2 remain reachable.
	_, ok, err := s.kv.Get(revKey("k", 0))
	require.NoError(t, err)
	assert.False(t, ok, "revision 0 should be pruned")

	v, ok, err := s.kv.Get(revKey("k", 1))
	require.NoError(t, err)
	require.True(t, ok, "revision 1 (latest ok) must survive cleanup")
	e, err := decodeEntry[string](v)
	require.NoError(t, err)
	assert.Equal(t, "v1", e.Value)
}

func TestFallbackInsertIfNotExists(t *testing.T) {
	s := newTestFallbackStore(t)

	wrote, err := s.InsertIfNotExists("k", Ok[string]("v1"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.InsertIfNotExists("k", Ok[string]("v1"))
	require.NoError(t, err)
	assert.False(t, wrote, "identical data should not create a new revision")

	wrote, err = s.InsertIfNotExists("k", Ok[string]("v2"))
	require.NoError(t, err)
	assert.True(t, wrote, "different data should create a new revision")
}

func TestFallbackInsertIfNotExistsComparesAgainstLatestOk(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Ok[string]("v")))
	require.NoError(t, s.Insert("k", Err[string](NewError("transient"))))

	wrote, err := s.InsertIfNotExists("k", Ok[string]("v"))
	require.NoError(t, err)
	assert.False(t, wrote, "latest-ok data matches even though the current revision is an error")
}

func TestFallbackRemoveAll(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("k", Ok[string]("v1")))
	require.NoError(t, s.Insert("k", Ok[string]("v2")))
	require.NoError(t, s.RemoveAll("k"))

	has, err := s.ContainsKey("k")
	require.NoError(t, err)
	assert.False(t, has)

	e, err := s.Get("k", Current)
	require.NoError(t, err)
	assert.False(t, e.IsOk())
}

func TestFallbackKeyIterAndValueIter(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("alpha", Ok[string]("1")))
	require.NoError(t, s.Insert("beta", Ok[string]("2")))

	var keys []string
	for k, err := range s.KeyIter("") {
		require.NoError(t, err)
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, keys)

	var values []string
	for e, err := range s.ValueIter("") {
		require.NoError(t, err)
		values = append(values, e.Value)
	}
	assert.ElementsMatch(t, []string{"1", "2"}, values)
}

func TestFallbackErrorIter(t *testing.T) {
	s := newTestFallbackStore(t)

	require.NoError(t, s.Insert("ok-key", Ok[string]("fine")))
	require.NoError(t, s.Insert("bad-key", Err[string](NewError("broke"))))

	var errKeys []string
	for k, entryErr := range s.ErrorIter("") {
		require.NotNil(t, entryErr)
		errKeys = append(errKeys, k)
	}
	assert.Equal(t, []string{"bad-key"}, errKeys)
}

func TestFallbackWatchPrefixSeesInserts(t *testing.T) {
	s := newTestFallbackStore(t)

	ch, cancel := s.WatchPrefix("k")
	defer cancel()

	require.NoError(t, s.Insert("k1", Ok[string]("v")))

	ev := <-ch
	assert.Contains(t, ev.Key, "k1")
}
