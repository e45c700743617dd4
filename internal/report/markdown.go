package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/freightlens/shipdedup/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteSummary(model.NewSummary(report))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeConfidence(md, summary)
	w.writeReview(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Shipdedup Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Dataset", "`" + summary.Dataset + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Metrics.Elapsed.String()},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	if summary.Error != "" {
		return "❌ Error - " + summary.Error
	}
	return "✅ Complete"
}

// writeCounts writes the resolution counts section.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.Summary) {
	m := summary.Metrics

	md.H2("Resolution")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Records", strconv.Itoa(m.Records)},
			{"Comparisons", strconv.Itoa(m.Comparisons)},
			{"Skipped comparisons", strconv.Itoa(m.SkippedComparisons)},
			{"Matched pairs", strconv.Itoa(m.Matches)},
			{"Clusters", strconv.Itoa(m.Clusters)},
			{"Largest cluster", strconv.Itoa(summary.LargestClusterSize)},
			{"Singletons", strconv.Itoa(m.Singletons)},
			{"Refinement fallbacks", strconv.Itoa(m.RefinementFallbacks)},
			{"Geocode failures", strconv.Itoa(m.GeocodeFailures)},
		},
	})
	md.PlainText("")

	// Duplicate distribution pie chart
	if m.Records > 0 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of duplicated vs unique records.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	m := summary.Metrics
	clustered := m.Records - m.Singletons

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Record Duplication"),
		piechart.WithShowData(true),
	)

	if clustered > 0 {
		chart.LabelAndIntValue("In a duplicate cluster", uint64(clustered))
	}
	if m.Singletons > 0 {
		chart.LabelAndIntValue("Unique", uint64(m.Singletons))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeConfidence writes confidence statistics over matched pairs.
func (w *MarkdownWriter) writeConfidence(md *markdown.Markdown, summary *model.Summary) {
	m := summary.Metrics

	md.H2("Match Confidence")
	md.PlainText("")

	if m.Matches == 0 {
		md.PlainText("No matched pairs.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Dimension", "Avg", "Min", "Max"},
		Rows: [][]string{
			statsRow("Name", m.NameConfidence),
			statsRow("Address", m.AddressConfidence),
			statsRow("Overall", m.OverallSimilarity),
		},
	})
	md.PlainText("")
}

// statsRow formats one confidence dimension as a table row.
func statsRow(label string, s model.ConfidenceStats) []string {
	return []string{
		label,
		fmt.Sprintf("%.2f", s.Avg),
		fmt.Sprintf("%.2f", s.Min),
		fmt.Sprintf("%.2f", s.Max),
	}
}

// writeReview writes the manual-review section with an alert sized to the
// review load.
func (w *MarkdownWriter) writeReview(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Manual Review")
	md.PlainText("")

	switch {
	case summary.Metrics.SuspectPairs > 0:
		md.Warningf(
			"%d suspected false positive pair(s) flagged: names agree but addresses diverge sharply. Review before trusting the clusters.",
			summary.Metrics.SuspectPairs,
		)
	case summary.ReviewPairs > 0:
		md.Importantf(
			"%d matched pair(s) fell below the review cutoff and should be spot-checked.",
			summary.ReviewPairs,
		)
	default:
		md.Tip("No pairs need manual review.")
	}
	md.PlainText("")

	if summary.ReviewPairs > 0 {
		md.PlainTextf("Total pairs routed to review: %d", summary.ReviewPairs)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [shipdedup](https://github.com/freightlens/shipdedup)*")
}
