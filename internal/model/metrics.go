package model

import "time"

// ConfidenceStats aggregates one confidence dimension over the matched pairs.
// All fields are zero when no pairs matched; the aggregator never divides by
// a zero match count.
type ConfidenceStats struct {
	// Avg is the arithmetic mean over all matched pairs.
	Avg float64 `json:"avg"`

	// Min is the lowest value seen.
	Min float64 `json:"min"`

	// Max is the highest value seen.
	Max float64 `json:"max"`
}

// RunMetrics summarizes a resolution run. It is recomputed fully each run
// and never persisted incrementally.
type RunMetrics struct {
	// Records is the number of input records.
	Records int `json:"records"`

	// Comparisons is the number of pairs actually scored.
	Comparisons int `json:"comparisons"`

	// SkippedComparisons counts pairs whose scoring failed and was recovered
	// locally (for example malformed text). Skips never abort the run.
	SkippedComparisons int `json:"skipped_comparisons"`

	// Matches is the number of matched pairs.
	Matches int `json:"matches"`

	// SuspectPairs is the number of suspect-false-positive pairs flagged
	// for review.
	SuspectPairs int `json:"suspect_pairs"`

	// Clusters is the number of distinct clusters formed.
	Clusters int `json:"clusters"`

	// Singletons is the number of records with no match.
	Singletons int `json:"singletons"`

	// RefinementFallbacks counts refinement calls that failed and fell
	// back to the original text.
	RefinementFallbacks int `json:"refinement_fallbacks,omitempty"`

	// GeocodeFailures counts addresses the geocoder could not resolve.
	GeocodeFailures int `json:"geocode_failures,omitempty"`

	// NameConfidence aggregates the raw name scores of matched pairs.
	NameConfidence ConfidenceStats `json:"name_confidence"`

	// AddressConfidence aggregates the address scores of matched pairs.
	AddressConfidence ConfidenceStats `json:"address_confidence"`

	// OverallSimilarity aggregates the combined scores of matched pairs.
	OverallSimilarity ConfidenceStats `json:"overall_similarity"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}
