// Package report provides run report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown summary with mermaid charts
//   - OutputCSV / ReviewCSV: Per-record results and manual-review pairs
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Summary writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. The CSV emitters
// stand apart: they need the full record set, not just the summary.
package report
