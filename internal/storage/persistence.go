package storage

import (
	"errors"
	"fmt"
	"scoreboard/internal/providers"
	"scoreboard/internal/storage/interfaces"
	"time"

	json "github.com/goccy/go-json"
)

// Persistence is the best-effort save/load layer over a quota-bound store.
// Losing persisted state is a degraded mode, never a failure: Save and Load
// report problems to the log and carry on.
type Persistence struct {
	store   interfaces.StoreInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	encode  func(v any) ([]byte, error)
}

func NewPersistence(store interfaces.StoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Persistence {
	return &Persistence{
		store:   store,
		logger:  logger,
		metrics: metrics,
		encode:  json.Marshal,
	}
}

// WithEncoder replaces the value encoder.
func (p *Persistence) WithEncoder(encode func(v any) ([]byte, error)) *Persistence {
	p.encode = encode
	return p
}

// Save serializes value under key. Oversized history values keep only their
// newest entry; a full store is cleared and the write retried once.
func (p *Persistence) Save(key string, value any) {
	data, err := p.encode(value)
	if err != nil {
		p.logger.Errorf(providers.TypeStorage, "Error serializing %s: %s", key, err)
		return
	}

	if len(data) > SoftLimitBytes {
		p.logger.Warnf(providers.TypeStorage, "Data for %s too large (%d bytes), attempting cleanup", key, len(data))
		if key == KeyHistory {
			data = firstElement(data)
		}
	}

	err = p.write(key, data)
	if err == nil {
		return
	}
	p.logger.Errorf(providers.TypeStorage, "Error saving %s: %s", key, err)
	if !errors.Is(err, ErrStorageFull) {
		return
	}

	if err = p.store.Clear(); err != nil {
		p.logger.Errorf(providers.TypeStorage, "Failed to clear store: %s", err)
		return
	}
	if err = p.write(key, data); err != nil {
		p.logger.Errorf(providers.TypeStorage, "Failed to save %s even after clearing storage: %s", key, err)
	}
}

// TrySave writes value without any recovery so callers can apply their own policy.
func (p *Persistence) TrySave(key string, value any) error {
	data, err := p.encode(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSerialization, key, err)
	}
	return p.write(key, data)
}

func (p *Persistence) write(key string, data []byte) error {
	start := time.Now()
	err := p.store.Set(key, data)
	p.metrics.ObservePersistenceDuration(time.Since(start))
	if errors.Is(err, ErrStorageFull) {
		p.metrics.IncStorageFull()
	}
	return err
}

// Load decodes key into dst. It reports false, leaving dst untouched, when the key
// is absent, the stored value is corrupt or the store cannot be read.
func (p *Persistence) Load(key string, dst any) bool {
	data, ok, err := p.store.Get(key)
	if err != nil {
		p.logger.Errorf(providers.TypeStorage, "Error loading %s: %s", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		p.logger.Errorf(providers.TypeStorage, "Error decoding %s: %s", key, err)
		return false
	}
	return true
}

// Clear wipes every key.
func (p *Persistence) Clear() {
	if err := p.store.Clear(); err != nil {
		p.logger.Errorf(providers.TypeStorage, "Error clearing store: %s", err)
	}
}

// LoadOr returns the value stored under key or def.
func LoadOr[T any](p *Persistence, key string, def T) T {
	var v T
	if !p.Load(key, &v) {
		return def
	}
	return v
}

// firstElement keeps only the head of a JSON array; other values pass through.
func firstElement(data []byte) []byte {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return data
	}
	out, err := json.Marshal(items[:1])
	if err != nil {
		return data
	}
	return out
}
