package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freightlens/shipdedup/internal/model"
)

// GeocodeCache is a SQLite-backed cache of geocoding results, keyed by
// standardized address. It satisfies the geocode.Cache interface.
//
// Failed lookups are cached as unknown coordinates: Nominatim answering
// "nothing found" is a result, and re-asking on every run would burn the
// service's rate limit for nothing.
type GeocodeCache struct {
	rdb *RunDB
}

// Geocache returns the geocode cache backed by this database.
func (rdb *RunDB) Geocache() *GeocodeCache {
	return &GeocodeCache{rdb: rdb}
}

// Get returns the cached coordinates for an address and whether the address
// was present.
func (gc *GeocodeCache) Get(ctx context.Context, address string) (model.Coordinates, bool, error) {
	var coords model.Coordinates
	var known int

	err := gc.rdb.db.QueryRowContext(ctx,
		`SELECT lat, lon, known FROM geocode_cache WHERE address = ?`, address,
	).Scan(&coords.Lat, &coords.Lon, &known)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Coordinates{}, false, nil
	}
	if err != nil {
		return model.Coordinates{}, false, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	coords.Known = known != 0
	return coords, true, nil
}

// Put stores the coordinates for an address, replacing any earlier entry.
func (gc *GeocodeCache) Put(ctx context.Context, address string, coords model.Coordinates) error {
	known := 0
	if coords.Known {
		known = 1
	}

	_, err := gc.rdb.db.ExecContext(ctx, `
	INSERT INTO geocode_cache (address, lat, lon, known)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(address) DO UPDATE SET
		lat = excluded.lat,
		lon = excluded.lon,
		known = excluded.known,
		timestamp = CURRENT_TIMESTAMP
	`, address, coords.Lat, coords.Lon, known)
	if err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}

	return nil
}
