package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/freightlens/shipdedup/internal/model"
)

// OutputCSV emits the per-record result: the input columns plus the cluster
// assignment and the scores of the record's strongest matched pair.
// Confidence columns are blank for singletons; "no matched pair" and
// "confidence zero" are different facts.
type OutputCSV struct {
	baseWriter

	nameColumn    string
	addressColumn string
}

// NewOutputCSV creates an output emitter. The column names echo the input
// file's headers so downstream joins line up.
func NewOutputCSV(output io.Writer, nameColumn, addressColumn string) *OutputCSV {
	return &OutputCSV{
		baseWriter:    newBaseWriter(output),
		nameColumn:    nameColumn,
		addressColumn: addressColumn,
	}
}

// Write emits one row per input record, in input order.
func (w *OutputCSV) Write(report *model.RunReport) error {
	cw := csv.NewWriter(w.output)

	header := []string{
		w.nameColumn, w.addressColumn,
		"location_index", "name_confidence", "address_confidence", "overall_similarity",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}

	best := bestPairPerRecord(report)

	for i, rec := range report.Records {
		row := []string{
			rec.Name,
			rec.Address,
			strconv.Itoa(int(clusterFor(report, i))),
			"", "", "",
		}
		if p, ok := best[rec.ID]; ok {
			row[3] = formatScore(p.NameConfidence)
			row[4] = formatScore(p.AddressConfidence)
			row[5] = formatScore(p.OverallSimilarity)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write output row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// clusterFor returns the record's cluster, or Unassigned when the run
// failed before clustering.
func clusterFor(report *model.RunReport, idx int) model.ClusterID {
	if idx >= len(report.Assignment) {
		return model.Unassigned
	}
	return report.Assignment[idx]
}

// bestPairPerRecord picks, for each record, the matched pair with the
// highest overall similarity it participates in.
func bestPairPerRecord(report *model.RunReport) map[model.RecordID]model.PairScore {
	best := make(map[model.RecordID]model.PairScore)
	for _, p := range report.Matches {
		for _, id := range []model.RecordID{p.I, p.J} {
			if cur, ok := best[id]; !ok || p.OverallSimilarity > cur.OverallSimilarity {
				best[id] = p
			}
		}
	}
	return best
}

// ReviewCSV emits the manual-review pairs with both records' raw text, so a
// reviewer can judge without re-opening the input file.
type ReviewCSV struct {
	baseWriter
}

// NewReviewCSV creates a review emitter.
func NewReviewCSV(output io.Writer) *ReviewCSV {
	return &ReviewCSV{baseWriter: newBaseWriter(output)}
}

// Write emits one row per review pair, in discovery order.
func (w *ReviewCSV) Write(report *model.RunReport) error {
	cw := csv.NewWriter(w.output)

	header := []string{
		"record_1", "record_2",
		"name_1", "address_1", "name_2", "address_2",
		"name_confidence", "address_confidence", "overall_similarity", "verdict",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write review header: %w", err)
	}

	for i, rp := range report.ReviewPairs {
		r1, r2 := recordAt(report, rp.I), recordAt(report, rp.J)
		row := []string{
			strconv.Itoa(int(rp.I)),
			strconv.Itoa(int(rp.J)),
			r1.Name, r1.Address,
			r2.Name, r2.Address,
			formatScore(rp.NameConfidence),
			formatScore(rp.AddressConfidence),
			formatScore(rp.OverallSimilarity),
			rp.Verdict.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write review row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// recordAt returns the record for an ID, or a zero record if out of range.
func recordAt(report *model.RunReport, id model.RecordID) model.Record {
	if int(id) >= len(report.Records) {
		return model.Record{}
	}
	return report.Records[id]
}

// formatScore renders a similarity score with two decimals, matching the
// summary report's precision.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
