// Package geocode resolves address strings to geographic coordinates.
//
// Geocoding is an optional enrichment: the resolution core only consumes
// already-resolved coordinates and never blocks on this package. The
// Geocoder interface is implemented by a Nominatim HTTP client with retry
// and exponential backoff, and composed with a cache so repeated runs over
// the same dataset do not re-query the upstream service.
//
// Failures are mapped by callers to the unknown-coordinates sentinel, never
// surfaced into match decisions.
package geocode
