package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, quota int) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "board.db"), quota)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SetGetOverwrite(t *testing.T) {
	s := newTestSQLiteStore(t, 1024)

	require.NoError(t, s.Set(KeyPeriod, []byte("1")))
	require.NoError(t, s.Set(KeyPeriod, []byte("2")))

	val, ok, err := s.Get(KeyPeriod)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("2"), val)
}

func TestSQLiteStore_Missing(t *testing.T) {
	s := newTestSQLiteStore(t, 1024)
	_, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_Quota(t *testing.T) {
	s := newTestSQLiteStore(t, 10)
	require.NoError(t, s.Set("ab", []byte("12345678")))
	require.NoError(t, s.Set("ab", []byte("87654321")))

	err := s.Set("c", []byte("1"))
	assert.ErrorIs(t, err, ErrStorageFull)

	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, 10, used)
}

func TestSQLiteStore_RemoveAndClear(t *testing.T) {
	s := newTestSQLiteStore(t, 1024)
	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))

	require.NoError(t, s.Remove("a"))
	_, ok, _ := s.Get("a")
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.db")
	s, err := NewSQLiteStore(path, 1024)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeySound, []byte("true")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path, 1024)
	require.NoError(t, err)
	defer reopened.Close()

	val, ok, err := reopened.Get(KeySound)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("true"), val)
}
