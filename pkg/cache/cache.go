// Package cache provides result caching for the solve pipeline.
//
// The [Cache] interface is a plain byte store with TTLs. Implementations:
//   - [FileCache]: one JSON file per entry, for CLI use (~/.cache/gridpath)
//   - [RedisCache]: shared store for server deployments
//   - [NullCache]: caching disabled
//
// A [Keyer] decides what goes into a key. Keys are derived from the SHA-256
// of the map text, so two requests for the same map share entries regardless
// of where they came from. [ScopedKeyer] prefixes every key to keep separate
// namespaces on a shared backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	// TTLSolve is how long a solve summary stays cached. Solving is pure, so
	// entries only expire to bound storage.
	TTLSolve = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact (e.g. SVG) stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys.
type Keyer interface {
	// SolveKey is the key of the solve summary for a map.
	SolveKey(mapHash string) string

	// ArtifactKey is the key of a rendered artifact for a map.
	ArtifactKey(mapHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Costs  bool   `json:"costs,omitempty"`
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolveKey returns "solve:<mapHash>".
func (DefaultKeyer) SolveKey(mapHash string) string {
	return "solve:" + mapHash
}

// ArtifactKey returns "artifact:<hash of mapHash and opts>".
func (DefaultKeyer) ArtifactKey(mapHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", mapHash, opts)
}
