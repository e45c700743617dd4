package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/freightlens/shipdedup/internal/model"
)

// createTestReport creates a completed run report with sample data.
func createTestReport() *model.RunReport {
	r := model.NewRunReport("hk_shippers.csv")
	r.Records = []model.Record{
		{ID: 0, Name: "ABC LTD", Address: "1 MAIN ST"},
		{ID: 1, Name: "ABC", Address: "1 MAIN STREET"},
		{ID: 2, Name: "XYZ CORP", Address: "9 OAK AVE"},
	}
	r.Matches = []model.PairScore{
		{I: 0, J: 1, NameConfidence: 85.5, AddressConfidence: 72, OverallSimilarity: 79.61},
	}
	r.ReviewPairs = []model.ReviewPair{
		{
			PairScore: model.PairScore{I: 0, J: 2, NameConfidence: 90, AddressConfidence: 40, OverallSimilarity: 68.26},
			Verdict:   model.VerdictSuspectFalsePositive,
		},
	}
	r.Assignment = model.ClusterAssignment{0, 0, model.Unassigned}
	r.Metrics = model.RunMetrics{
		Records:           3,
		Comparisons:       3,
		Matches:           1,
		SuspectPairs:      1,
		Clusters:          1,
		Singletons:        1,
		NameConfidence:    model.ConfidenceStats{Avg: 85.5, Min: 85.5, Max: 85.5},
		AddressConfidence: model.ConfidenceStats{Avg: 72, Min: 72, Max: 72},
		OverallSimilarity: model.ConfidenceStats{Avg: 79.61, Min: 79.61, Max: 79.61},
		Elapsed:           420 * time.Millisecond,
	}
	return r
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SHIPDEDUP RUN SUMMARY") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "hk_shippers.csv") {
			t.Error("expected output to contain dataset")
		}
	})

	t.Run("writes resolution counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "RESOLUTION SUMMARY") {
			t.Error("expected resolution section")
		}
		if !strings.Contains(output, "Clusters:     1") {
			t.Errorf("expected cluster count in output: %s", output)
		}
		if !strings.Contains(output, "Singletons:   1") {
			t.Errorf("expected singleton count in output: %s", output)
		}
	})

	t.Run("writes confidence stats", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "MATCH CONFIDENCE") {
			t.Error("expected confidence section")
		}
		if !strings.Contains(output, "85.50") {
			t.Error("expected name confidence value")
		}
	})

	t.Run("writes review section when pairs flagged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "MANUAL REVIEW") {
			t.Error("expected review section")
		}
		if !strings.Contains(output, "Suspect false positives:   1") {
			t.Errorf("expected suspect count, got: %s", output)
		}
	})

	t.Run("omits empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		empty := model.NewRunReport("empty.csv")
		if _, err := w.Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "MATCH CONFIDENCE") {
			t.Error("empty confidence section should be omitted")
		}
	})

	t.Run("shows empty sections with WithShowEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		empty := model.NewRunReport("empty.csv")
		if _, err := w.Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No matched pairs") {
			t.Error("expected empty confidence section to be shown")
		}
	})

	t.Run("reports run error in header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		r := createTestReport()
		r.ErrorMessage = "input not found"
		if _, err := w.Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "ERROR - input not found") {
			t.Error("expected error status in header")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary round-trips through JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var summary model.Summary
		if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if summary.Dataset != "hk_shippers.csv" {
			t.Errorf("unexpected dataset: %q", summary.Dataset)
		}
		if summary.Metrics.Matches != 1 {
			t.Errorf("unexpected match count: %d", summary.Metrics.Matches)
		}
		if summary.LargestClusterSize != 2 {
			t.Errorf("unexpected largest cluster: %d", summary.LargestClusterSize)
		}
	})

	t.Run("pretty print produces indented output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented JSON output")
		}
	})

	t.Run("full writer wraps report with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("unexpected version: %q", wrapped.Version)
		}
		if wrapped.Report == nil || len(wrapped.Report.Matches) != 1 {
			t.Error("expected full report with matches")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown structure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Shipdedup Run Summary") {
			t.Error("expected H1 header")
		}
		if !strings.Contains(output, "## Resolution") {
			t.Error("expected resolution section")
		}
		if !strings.Contains(output, "`hk_shippers.csv`") {
			t.Error("expected dataset in code span")
		}
	})

	t.Run("warns on suspect pairs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "suspected false positive") {
			t.Error("expected suspect warning")
		}
	})

	t.Run("clean run gets a tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		r := createTestReport()
		r.ReviewPairs = nil
		r.Metrics.SuspectPairs = 0
		if _, err := w.Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No pairs need manual review") {
			t.Error("expected review tip")
		}
	})
}

// TestMultiWriter tests writing to multiple destinations.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	if _, err := mw.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text.Len() == 0 {
		t.Error("expected text output")
	}
	if jsonBuf.Len() == 0 {
		t.Error("expected JSON output")
	}
}

// TestOutputCSV tests the per-record output emitter.
func TestOutputCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewOutputCSV(&buf, "shipper_name", "first3_addresses")

	if err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	wantHeader := []string{
		"shipper_name", "first3_addresses",
		"location_index", "name_confidence", "address_confidence", "overall_similarity",
	}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}

	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}

	// Matched records carry their pair's scores
	if rows[1][2] != "0" || rows[1][3] != "85.50" {
		t.Errorf("unexpected matched row: %v", rows[1])
	}
	if rows[2][2] != "0" {
		t.Errorf("expected cluster 0 for second record: %v", rows[2])
	}

	// Singleton: cluster -1, blank confidences
	if rows[3][2] != "-1" {
		t.Errorf("expected -1 for singleton, got %q", rows[3][2])
	}
	if rows[3][3] != "" || rows[3][4] != "" || rows[3][5] != "" {
		t.Errorf("expected blank confidences for singleton: %v", rows[3])
	}
}

// TestReviewCSV tests the review pair emitter.
func TestReviewCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewReviewCSV(&buf)

	if err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "record_1" || rows[0][9] != "verdict" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	row := rows[1]
	if row[0] != "0" || row[1] != "2" {
		t.Errorf("unexpected record IDs: %v", row)
	}
	if row[2] != "ABC LTD" || row[4] != "XYZ CORP" {
		t.Errorf("expected raw names in review row: %v", row)
	}
	if row[9] != "suspect_false_positive" {
		t.Errorf("unexpected verdict: %q", row[9])
	}
}
