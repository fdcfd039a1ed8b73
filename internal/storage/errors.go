package storage

import "errors"

var (
	// ErrStorageFull means the write would push the store past its quota.
	ErrStorageFull = errors.New("storage full")
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store closed")
	// ErrSerialization wraps a value that could not be encoded.
	ErrSerialization = errors.New("serialization failed")
)
