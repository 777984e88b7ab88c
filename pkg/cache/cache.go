// Package cache stores rendered model graph artifacts.
//
// Every backend implements [Cache]: [FileCache] for the CLI (one JSON file
// per entry under the user cache directory), [LRUCache] for a single server
// process, [RedisCache] for servers sharing one store, and [NullCache] when
// caching is disabled.
//
// Keys are produced by a [Keyer] so that identical inputs map to the same
// entry regardless of the backend:
//
//	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash(doc), cache.ArtifactKeyOpts{
//	    DocFormat: "yaml",
//	    Format:    "svg",
//	    Channels:  3,
//	})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Default expirations.
const (
	// TTLArtifact applies to rendered diagrams and JSON exports. Artifacts
	// are keyed by content, so the TTL only bounds disk and memory use.
	TTLArtifact = 7 * 24 * time.Hour
)
