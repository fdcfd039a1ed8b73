package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore(1024)
	require.NoError(t, s.Set("k", []byte("v")))

	val, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)
}

func TestMemoryStore_Missing(t *testing.T) {
	s := NewMemoryStore(1024)
	val, ok, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestMemoryStore_QuotaCountsKeysAndValues(t *testing.T) {
	s := NewMemoryStore(10)
	require.NoError(t, s.Set("ab", []byte("12345678")))

	err := s.Set("c", []byte("1"))
	assert.ErrorIs(t, err, ErrStorageFull)

	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, 10, used)
}

func TestMemoryStore_OverwriteReusesQuota(t *testing.T) {
	s := NewMemoryStore(10)
	require.NoError(t, s.Set("ab", []byte("12345678")))
	require.NoError(t, s.Set("ab", []byte("87654321")))

	val, _, _ := s.Get("ab")
	assert.Equal(t, []byte("87654321"), val)
}

func TestMemoryStore_RemoveAndClear(t *testing.T) {
	s := NewMemoryStore(1024)
	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))

	require.NoError(t, s.Remove("a"))
	_, ok, _ := s.Get("a")
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	used, _ := s.Usage()
	assert.Equal(t, 0, used)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	s := NewMemoryStore(1024)
	in := []byte("abc")
	require.NoError(t, s.Set("k", in))
	in[0] = 'x'

	val, _, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), val)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore(1024)
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Set("k", []byte("v")), ErrStoreClosed)
	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, ErrStoreClosed)
}
