package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"scoreboard/internal/providers"
	"scoreboard/internal/storage/interfaces"
	"sync"

	json "github.com/goccy/go-json"
)

const fileFormatVersion = 1

// fileDocument is the on-disk envelope: every key in one zstd-compressed JSON document.
type fileDocument struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// FileStore keeps the whole key space in memory and rewrites the backing file
// atomically after every change.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	quota      int
	data       map[string][]byte
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	closed     bool
}

// NewFileStore opens path, creating it on first write. A missing file is an empty
// store; an unreadable one is logged and replaced by an empty store.
func NewFileStore(path string, quota int, compressor interfaces.CompressorInterface, logger providers.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	fs := &FileStore{
		path:       path,
		quota:      quota,
		data:       make(map[string][]byte),
		compressor: compressor,
		logger:     logger,
	}
	if err := fs.load(); err != nil {
		logger.Warnf(providers.TypeStorage, "Discarding unreadable store %s: %s", path, err)
		fs.data = make(map[string][]byte)
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := fs.compressor.Decompress(raw)
	if err != nil {
		return err
	}

	var doc fileDocument
	if err := json.Unmarshal(decompressed, &doc); err != nil {
		return err
	}
	if doc.Version != fileFormatVersion {
		return fmt.Errorf("unsupported store version %d", doc.Version)
	}
	for k, v := range doc.Entries {
		fs.data[k] = []byte(v)
	}
	return nil
}

func (fs *FileStore) flush(data map[string][]byte) error {
	doc := fileDocument{Version: fileFormatVersion, Entries: make(map[string]string, len(data))}
	for k, v := range data {
		doc.Entries[k] = string(v)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	compressed, err := fs.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fs.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(compressed)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fs.path)
}

// apply runs mutate on a copy of the key space and commits it only if the flush succeeds.
func (fs *FileStore) apply(mutate func(next map[string][]byte)) error {
	next := make(map[string][]byte, len(fs.data)+1)
	for k, v := range fs.data {
		next[k] = v
	}
	mutate(next)

	if err := fs.flush(next); err != nil {
		return err
	}
	fs.data = next
	return nil
}

func (fs *FileStore) Get(key string) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return nil, false, ErrStoreClosed
	}
	val, ok := fs.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (fs *FileStore) Set(key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrStoreClosed
	}
	if used := usageAfter(fs.data, key, value); used > fs.quota {
		return fmt.Errorf("%w: %d of %d bytes", ErrStorageFull, used, fs.quota)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	return fs.apply(func(next map[string][]byte) {
		next[key] = stored
	})
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrStoreClosed
	}
	if _, ok := fs.data[key]; !ok {
		return nil
	}
	return fs.apply(func(next map[string][]byte) {
		delete(next, key)
	})
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrStoreClosed
	}
	return fs.apply(func(next map[string][]byte) {
		clear(next)
	})
}

func (fs *FileStore) Usage() (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return usage(fs.data), nil
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	fs.closed = true
	fs.compressor.Close()
	return nil
}
