package model

import "time"

// RunReport is the accumulating result of one resolution run. Pipeline steps
// receive it in sequence, each filling in the fields it is responsible for.
//
// Design decision: We use a single large struct rather than threading many
// return values through the pipeline because it simplifies serialization,
// database storage, and adding new steps without changing signatures.
type RunReport struct {
	// Dataset is a label for the input, typically the input file path.
	Dataset string `json:"dataset"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Records is the raw record set, in source order. Read-only after load.
	Records []Record `json:"-"`

	// Refined holds the post-refinement text for each record, parallel to
	// Records. Nil when no refiner is configured.
	Refined []Record `json:"-"`

	// Standardized holds the cached standardized form of each record,
	// parallel to Records.
	Standardized []StandardizedRecord `json:"-"`

	// Coordinates holds per-record geocoding results, parallel to Records.
	// Nil when geocoding is disabled.
	Coordinates []Coordinates `json:"-"`

	// Matches is the set of matched pairs with their scores. Each unordered
	// pair appears at most once, with I < J.
	Matches []PairScore `json:"matches,omitempty"`

	// ReviewPairs collects pairs needing human attention: suspect false
	// positives plus matches below the review cutoff.
	ReviewPairs []ReviewPair `json:"review_pairs,omitempty"`

	// Assignment maps each record to its cluster, or Unassigned.
	Assignment ClusterAssignment `json:"assignment,omitempty"`

	// Metrics is the run summary, filled by the final step.
	Metrics RunMetrics `json:"metrics"`

	// PerformedSteps records which pipeline steps ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Err is the first fatal error encountered, if any.
	Err error `json:"-"`

	// ErrorMessage mirrors Err for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRunReport creates a RunReport for the given dataset label.
func NewRunReport(dataset string) *RunReport {
	return &RunReport{
		Dataset:   dataset,
		StartedAt: time.Now(),
	}
}

// SetError records a fatal run error.
func (r *RunReport) SetError(err error) {
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
