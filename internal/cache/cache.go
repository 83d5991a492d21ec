// Package cache provides a TTL cache over a pluggable session-scoped
// key-value store. Expiry is evaluated lazily: Get is the sole eviction
// point, and an expired entry is removed by the read that discovers it.
package cache

import (
	"encoding/json"
	"time"

	"github.com/riverbend/localwaters/internal/domain"
)

// Store is a volatile string-keyed byte store with session lifetime.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// envelope is the stored wire shape: the payload plus its write time in
// Unix milliseconds.
type envelope struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt int64           `json:"storedAt"`
}

// Cache is a typed TTL cache for one key family. Distinct payload shapes
// get distinct Cache instances with distinct key prefixes, so one family's
// entries can never deserialize as another's.
type Cache[T any] struct {
	store  Store
	prefix string
}

// New creates a Cache for one key family over the given store.
func New[T any](store Store, prefix string) *Cache[T] {
	return &Cache[T]{store: store, prefix: prefix}
}

// Get returns the cached value for key if it is younger than maxAge. A hit
// older than maxAge is deleted and reported absent; so is an entry that no
// longer deserializes.
func (c *Cache[T]) Get(key string, maxAge time.Duration) (T, bool) {
	var zero T

	raw, ok := c.store.Get(c.prefix + key)
	if !ok {
		return zero, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.store.Delete(c.prefix + key)
		return zero, false
	}

	storedAt := time.UnixMilli(env.StoredAt)
	if domain.Now().Sub(storedAt) > maxAge {
		c.store.Delete(c.prefix + key)
		return zero, false
	}

	var value T
	if err := json.Unmarshal(env.Payload, &value); err != nil {
		c.store.Delete(c.prefix + key)
		return zero, false
	}
	return value, true
}

// Set stores value under key with the current time. The write is a single
// serialize-and-store call; a value that fails to serialize is not stored.
func (c *Cache[T]) Set(key string, value T) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	raw, err := json.Marshal(envelope{
		Payload:  payload,
		StoredAt: domain.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	c.store.Set(c.prefix+key, raw)
}
