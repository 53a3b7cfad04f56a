// Package cache stores rendered artifacts and loaded inputs between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for batch rendering on several hosts
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer] so that every backend addresses entries the same
// way. [ScopedKeyer] prefixes keys, which lets several surveys or sites share
// one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Entry lifetimes.
const (
	// TTLVisits bounds how long visits read from an opsim database are kept.
	// The key includes the file's modification time, so this only limits
	// growth.
	TTLVisits = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of rendered SVG/PNG/PDF output.
	TTLArtifact = 30 * 24 * time.Hour
)

// NullCache never stores anything. Every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)             { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error      { return nil }
func (NullCache) Delete(context.Context, string) error                         { return nil }
func (NullCache) Close() error                                                 { return nil }

var _ Cache = NullCache{}
