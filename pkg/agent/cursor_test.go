package agent

import (
	"path/filepath"
	"testing"

	"github.com/chainwatch/fleetbot/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContinuationCursorKey(t *testing.T) {
	kv, err := store.Open(filepath.Join(t.TempDir(), "cursor.db"), "")
	require.NoError(t, err)
	defer kv.Close()
	s := store.NewFallbackStore[string](kv)

	_, ok, err := GetNextKey(s, "chain-registry")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetNextKey(s, "chain-registry", "page-2-token"))

	next, ok, err := GetNextKey(s, "chain-registry")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "page-2-token", next)
}

func TestContinuationCursorIndex(t *testing.T) {
	kv, err := store.Open(filepath.Join(t.TempDir(), "cursor.db"), "")
	require.NoError(t, err)
	defer kv.Close()
	s := store.NewFallbackStore[uint64](kv)

	require.NoError(t, SetNextIndex(s, "validators", 42))

	next, ok, err := GetNextIndex(s, "validators")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), next)
}
