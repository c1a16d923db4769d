package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// DefaultTTL is how long exported artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the data stored under key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// ArtifactKey identifies the rendering of dot into format at scale. The
// key is "artifact:" followed by 64 hex digits.
func ArtifactKey(dot, format string, scale float64) string {
	h := sha256.New()
	h.Write([]byte(dot))
	h.Write([]byte{0})
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(scale, 'g', -1, 64)))
	return "artifact:" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// nullCache never stores anything. It backs exports run with --no-cache.
type nullCache struct{}

// NewNullCache returns a Cache on which every Get misses.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }
