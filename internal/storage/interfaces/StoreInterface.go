package interfaces

// StoreInterface is a size-bounded durable key/value store.
// Set returns an error wrapping storage.ErrStorageFull when the quota would be exceeded.
type StoreInterface interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Clear() error
	Usage() (int, error)
	Close() error
}
