package model

// RecordID identifies a record by its ordinal position in the input.
// IDs are zero-based and stable for the duration of a run: the order in
// which the source yields records defines them, and nothing reorders the
// record set afterwards.
type RecordID int

// Record is a raw business-entity record as supplied by the record source.
// Records are immutable once loaded; the resolution core only ever reads them.
type Record struct {
	// ID is the record's ordinal position in the input.
	ID RecordID `json:"id"`

	// Name is the raw entity name, exactly as loaded.
	// A missing value in the source is represented as an empty string.
	Name string `json:"name"`

	// Address is the raw entity address, exactly as loaded.
	// A missing value in the source is represented as an empty string.
	Address string `json:"address"`
}

// StandardizedRecord is the canonical comparable form of a Record.
// It is a pure function of the Record's raw fields: standardizing the same
// record twice always yields the same result, so the value is computed once
// and cached alongside the record set.
type StandardizedRecord struct {
	// Name is the standardized entity name.
	Name string `json:"name"`

	// Address is the standardized entity address.
	Address string `json:"address"`
}

// Empty reports whether both standardized fields are empty. Pairs in which
// either side standardizes to nothing are never classified as matches, since
// naive string similarity is undefined (or maximal) for empty inputs.
func (s StandardizedRecord) Empty() bool {
	return s.Name == "" && s.Address == ""
}

// Coordinates is the result of geocoding an address.
//
// Design decision: We carry an explicit Known flag instead of using (0, 0)
// as an in-band sentinel. (0, 0) is a real location, and the resolution core
// must be able to distinguish "geocoder had no answer" from "the entity is
// at null island" without guessing.
type Coordinates struct {
	// Lat is the latitude in decimal degrees.
	Lat float64 `json:"lat"`

	// Lon is the longitude in decimal degrees.
	Lon float64 `json:"lon"`

	// Known is false when the geocoder could not resolve the address.
	// Unknown coordinates contribute no signal to match decisions.
	Known bool `json:"known"`
}
