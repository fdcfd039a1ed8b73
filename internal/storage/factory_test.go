package storage

import (
	"os"
	"path/filepath"
	"scoreboard/internal/storage/interfaces"
	"scoreboard/internal/structures"
	"scoreboard/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageConfig(driver, path string) *structures.Config {
	return &structures.Config{
		Storage: structures.StorageConfig{Driver: driver, Path: path, QuotaBytes: 1024},
	}
}

func TestNewStore_Drivers(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		driver   string
		path     string
		expected interface{}
	}{
		{"memory", "", &MemoryStore{}},
		{"file", filepath.Join(dir, "board.dat"), &FileStore{}},
		{"sqlite", filepath.Join(dir, "board.db"), &SQLiteStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			store, cleanup, err := NewStore(storageConfig(tt.driver, tt.path), &testutil.MockLogger{})
			require.NoError(t, err)
			defer cleanup()
			assert.IsType(t, tt.expected, store)
			require.NoError(t, store.Set(KeyPeriod, []byte("2")))
		})
	}
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, _, err := NewStore(storageConfig("redis", ""), &testutil.MockLogger{})
	assert.Error(t, err)
}

func TestNewStore_FileStoreFailureClosesCompressor(t *testing.T) {
	compressor := &testutil.MockCompressor{}
	orig := newCompressor
	newCompressor = func() (interfaces.CompressorInterface, error) { return compressor, nil }
	t.Cleanup(func() { newCompressor = orig })

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := NewStore(storageConfig("file", filepath.Join(blocker, "board.dat")), &testutil.MockLogger{})
	require.Error(t, err)
	assert.True(t, compressor.Closed)
}
