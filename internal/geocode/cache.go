package geocode

import (
	"context"

	"github.com/freightlens/shipdedup/internal/model"
)

// Cache stores geocoding results by standardized address. The database
// package provides a SQLite-backed implementation so repeated runs over the
// same dataset skip the upstream service entirely.
type Cache interface {
	// Get returns the cached coordinates for an address and whether the
	// address was present. Unknown coordinates are cached too: "Nominatim
	// has no answer" is itself a result worth remembering.
	Get(ctx context.Context, address string) (model.Coordinates, bool, error)

	// Put stores the coordinates for an address.
	Put(ctx context.Context, address string, coords model.Coordinates) error
}

// Cached wraps a Geocoder with a Cache. Cache errors degrade to upstream
// lookups rather than failing the enrichment.
type Cached struct {
	upstream Geocoder
	cache    Cache
}

// NewCached composes a geocoder with a cache.
func NewCached(upstream Geocoder, cache Cache) *Cached {
	return &Cached{upstream: upstream, cache: cache}
}

// Geocode returns the cached result when present, otherwise resolves via
// the upstream geocoder and stores the outcome.
func (c *Cached) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	if coords, ok, err := c.cache.Get(ctx, address); err == nil && ok {
		return coords, nil
	}

	coords, err := c.upstream.Geocode(ctx, address)
	if err != nil {
		return coords, err
	}

	// A failed write only costs a future cache miss.
	_ = c.cache.Put(ctx, address, coords) //nolint:errcheck

	return coords, nil
}
