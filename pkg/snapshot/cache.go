package snapshot

import (
	"context"
	"errors"
	"sync"

	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// Source supplies the current snapshot. Implementations load from the backing
// store out-of-band; the cache only asks for what is already materialized.
type Source interface {
	Current(ctx context.Context) (*Snapshot, error)
}

// Cache memoizes the alias index per snapshot version. Built lazily on first
// touch, reused while the version tag is unchanged, rebuilt (replaced, never
// mutated) when it changes. The check-then-set is a single critical section so
// concurrent first-touch cannot rebuild twice.
type Cache struct {
	source  Source
	numeric matching.NumericPrefixed

	mu      sync.Mutex
	version string
	index   *matching.Index
}

func NewCache(source Source, numeric matching.NumericPrefixed) *Cache {
	return &Cache{source: source, numeric: numeric}
}

var _ matching.IndexProvider = (*Cache)(nil)

// Index returns the alias index for the current snapshot version.
func (c *Cache) Index(ctx context.Context) (*matching.Index, error) {
	snap, err := c.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errors.New("no snapshot loaded")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != nil && c.version == snap.Version {
		return c.index, nil
	}
	c.index = BuildIndex(snap, c.numeric)
	c.version = snap.Version
	return c.index, nil
}

// Invalidate drops the cached index so the next touch rebuilds. Used when the
// ingestion pipeline announces a refresh without waiting for the version tag
// comparison to notice.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.version = ""
}
