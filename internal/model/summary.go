package model

import "time"

// Summary is a flat, serializable run summary for report output.
//
// Design decision: We create a separate summary rather than printing parts
// of RunReport directly because:
// 1. It provides a consistent, curated view for all report writers
// 2. It can be serialized to JSON for tools that want structured output
// 3. It separates presentation concerns from the run's working state
type Summary struct {
	// Dataset is the input label the run processed.
	Dataset string `json:"dataset"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Metrics is the full run summary.
	Metrics RunMetrics `json:"metrics"`

	// LargestClusterSize is the member count of the biggest cluster.
	LargestClusterSize int `json:"largest_cluster_size"`

	// ReviewPairs is the number of pairs routed to the review report.
	ReviewPairs int `json:"review_pairs"`

	// Error contains any fatal error message if the run failed.
	Error string `json:"error,omitempty"`
}

// NewSummary derives a Summary from a completed run.
func NewSummary(r *RunReport) *Summary {
	s := &Summary{
		Dataset:     r.Dataset,
		StartedAt:   r.StartedAt,
		Metrics:     r.Metrics,
		ReviewPairs: len(r.ReviewPairs),
		Error:       r.ErrorMessage,
	}

	sizes := make(map[ClusterID]int)
	for _, id := range r.Assignment {
		if id == Unassigned {
			continue
		}
		sizes[id]++
		if sizes[id] > s.LargestClusterSize {
			s.LargestClusterSize = sizes[id]
		}
	}

	return s
}
