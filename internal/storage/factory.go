package storage

import (
	"fmt"
	"scoreboard/internal/providers"
	"scoreboard/internal/storage/interfaces"
	"scoreboard/internal/structures"
)

var newCompressor = NewZstdCompressor

// NewStore builds the backend named by storage.driver.
func NewStore(conf *structures.Config, logger providers.Logger) (interfaces.StoreInterface, func(), error) {
	var (
		store interfaces.StoreInterface
		err   error
	)

	switch conf.Storage.Driver {
	case "memory":
		store = NewMemoryStore(conf.Storage.QuotaBytes)
	case "sqlite":
		store, err = NewSQLiteStore(conf.Storage.Path, conf.Storage.QuotaBytes)
	case "file":
		var compressor interfaces.CompressorInterface
		compressor, err = newCompressor()
		if err != nil {
			return nil, nil, err
		}
		store, err = NewFileStore(conf.Storage.Path, conf.Storage.QuotaBytes, compressor, logger)
		if err != nil {
			compressor.Close()
		}
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Infof(providers.TypeStorage, "Storage %s ready (quota %d bytes)", conf.Storage.Driver, conf.Storage.QuotaBytes)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeStorage, "Error closing store: %s", err)
		}
	}
	return store, cleanup, nil
}
