package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/freightlens/shipdedup/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteSummary(model.NewSummary(report))
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeConfidence(&sb, summary)
	w.writeReview(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SHIPDEDUP RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Dataset:    %s\n", summary.Dataset))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", summary.Metrics.Elapsed.Round(time.Millisecond)))

	if summary.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:     ERROR - %s\n", summary.Error))
	} else {
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeCounts writes the record and cluster counts section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.Summary) {
	m := summary.Metrics

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESOLUTION SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Records:      %d\n", m.Records))
	sb.WriteString(fmt.Sprintf("  Comparisons:  %d", m.Comparisons))
	if m.SkippedComparisons > 0 {
		sb.WriteString(fmt.Sprintf(" (%d skipped)", m.SkippedComparisons))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Matches:      %d\n", m.Matches))
	sb.WriteString(fmt.Sprintf("  Clusters:     %d", m.Clusters))
	if summary.LargestClusterSize > 0 {
		sb.WriteString(fmt.Sprintf(" (largest: %d records)", summary.LargestClusterSize))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Singletons:   %d\n", m.Singletons))

	if w.verbose || m.RefinementFallbacks > 0 {
		sb.WriteString(fmt.Sprintf("  Refinement fallbacks: %d\n", m.RefinementFallbacks))
	}
	if w.verbose || m.GeocodeFailures > 0 {
		sb.WriteString(fmt.Sprintf("  Geocode failures:     %d\n", m.GeocodeFailures))
	}
	sb.WriteString("\n")
}

// writeConfidence writes the confidence statistics over matched pairs.
func (w *SimpleWriter) writeConfidence(sb *strings.Builder, summary *model.Summary) {
	m := summary.Metrics
	if m.Matches == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MATCH CONFIDENCE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if m.Matches == 0 {
		sb.WriteString("  No matched pairs\n\n")
		return
	}

	sb.WriteString("              avg     min     max\n")
	writeStats(sb, "Name:    ", m.NameConfidence)
	writeStats(sb, "Address: ", m.AddressConfidence)
	writeStats(sb, "Overall: ", m.OverallSimilarity)
	sb.WriteString("\n")
}

// writeStats writes one confidence dimension as a fixed-width row.
func writeStats(sb *strings.Builder, label string, s model.ConfidenceStats) {
	sb.WriteString(fmt.Sprintf("  %s%7.2f %7.2f %7.2f\n", label, s.Avg, s.Min, s.Max))
}

// writeReview writes the manual-review section.
func (w *SimpleWriter) writeReview(sb *strings.Builder, summary *model.Summary) {
	if summary.ReviewPairs == 0 && summary.Metrics.SuspectPairs == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MANUAL REVIEW\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if summary.ReviewPairs == 0 {
		sb.WriteString("  No pairs need review\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  Pairs flagged:             %d\n", summary.ReviewPairs))
	sb.WriteString(fmt.Sprintf("  Suspect false positives:   %d\n", summary.Metrics.SuspectPairs))
	sb.WriteString("\n")
}
