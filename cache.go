package exocore

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey generates a cache key for a query.
type CacheKey struct {
	Table      string
	Operation  string
	Predicates string
	OrderBy    string
	Limit      int
	Offset     int
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Operation + ":" + k.Predicates + ":" + k.OrderBy
}

// Marshal encodes the cache key as compact MessagePack, for callers that
// want a binary key rather than the human-readable String form
// (e.g. hashing it, or storing it alongside the cached value in the same
// binary-oriented backend).
func (k CacheKey) Marshal() ([]byte, error) {
	return msgpack.Marshal(k)
}

// UnmarshalCacheKey reverses Marshal.
func UnmarshalCacheKey(data []byte) (CacheKey, error) {
	var k CacheKey
	err := msgpack.Unmarshal(data, &k)
	return k, err
}
