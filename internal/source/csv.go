package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/freightlens/shipdedup/internal/model"
)

// Input reading errors.
//
// A malformed input file is a fatal condition: silently skipping rows or
// columns would change which duplicates the run can find, so the caller
// gets an error and the run stops before any scoring happens.
var (
	// ErrEmptyInput is returned when the CSV has no header row.
	ErrEmptyInput = errors.New("empty input: CSV file has no header row")

	// ErrMissingColumn is returned when a configured column is absent from
	// the header. Wrapped with the column name; match with errors.Is.
	ErrMissingColumn = errors.New("column not found in CSV header")
)

// CSVSource reads shipper records from a CSV file.
type CSVSource struct {
	path          string
	nameColumn    string
	addressColumn string
}

// NewCSVSource creates a source reading from path, taking the shipper name
// and address from the named header columns.
func NewCSVSource(path, nameColumn, addressColumn string) *CSVSource {
	return &CSVSource{
		path:          path,
		nameColumn:    nameColumn,
		addressColumn: addressColumn,
	}
}

// Load reads all records from the file. Records are assigned sequential IDs
// in file order; those IDs are the positions used by cluster assignments, so
// every data row yields a record even when both cells are blank.
func (s *CSVSource) Load() ([]model.Record, error) {
	f, err := os.Open(s.path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	return s.read(f)
}

func (s *CSVSource) read(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	// Manifests exported from spreadsheets often have ragged rows
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx, err := columnIndex(header, s.nameColumn)
	if err != nil {
		return nil, err
	}
	addrIdx, err := columnIndex(header, s.addressColumn)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}

		records = append(records, model.Record{
			ID:      model.RecordID(len(records)),
			Name:    cell(row, nameIdx),
			Address: cell(row, addrIdx),
		})
	}

	return records, nil
}

// columnIndex resolves a header column name to its position.
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// cell returns the value at idx, or an empty string for rows too short to
// hold it. Blank cells are valid data; standardization handles them.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
