package geocode

import (
	"context"
	"math"

	"github.com/freightlens/shipdedup/internal/model"
)

// Geocoder maps an address string to coordinates. Implementations must be
// safe for concurrent use; the pipeline geocodes with bounded parallelism.
type Geocoder interface {
	// Geocode resolves one address. A lookup that completes but finds no
	// location returns unknown coordinates and a nil error; an error means
	// the lookup itself failed and the caller decides whether to retry or
	// record the address as unknown.
	Geocode(ctx context.Context, address string) (model.Coordinates, error)
}

// Unknown is the sentinel for an unresolvable address.
func Unknown() model.Coordinates {
	return model.Coordinates{}
}

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3958.7613

// DistanceMiles returns the great-circle distance between two known
// coordinates. Callers must not pass unknown coordinates; the result would
// be a distance to null island, not an absence of signal.
func DistanceMiles(a, b model.Coordinates) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
