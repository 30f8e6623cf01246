// Package spreadsheet reads tabular uploads into header-keyed rows and writes
// xlsx workbooks.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// Table is a parsed sheet: its normalised header and data rows
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one data row keyed by normalised header. Number is the 1-based
// line in the source, header included.
type Row struct {
	Number int
	Fields map[string]string
}

// Get returns the trimmed value of a column by any spelling of its header
func (r Row) Get(column string) string {
	return r.Fields[NormalizeHeader(column)]
}

var headerReplacer = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")

// NormalizeHeader maps "Roll Number", "roll_number" and "rollNumber" to "rollnumber".
func NormalizeHeader(h string) string {
	return strings.ToLower(headerReplacer.Replace(strings.TrimSpace(h)))
}

// Parse reads an .xlsx or .csv file. The format is chosen by the file name.
func Parse(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedFile,
			fmt.Sprintf("unsupported file %q, upload an .xlsx or .csv file", filename))
	}
}

func parseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedFile, "the workbook could not be opened")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return FromRecords(records), nil
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, fmt.Sprintf("malformed csv: %v", err))
		}
		records = append(records, rec)
	}
	return FromRecords(records), nil
}

// FromRecords turns a header row plus data rows into a Table. Blank rows are
// skipped and short rows are padded with empty values.
func FromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		fields := make(map[string]string, len(header))
		blank := true
		for col, key := range header {
			if key == "" {
				continue
			}
			var v string
			if col < len(rec) {
				v = strings.TrimSpace(rec[col])
			}
			if v != "" {
				blank = false
			}
			fields[key] = v
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Fields: fields})
	}

	present := make([]string, 0, len(header))
	for _, h := range header {
		if h != "" {
			present = append(present, h)
		}
	}
	return &Table{Header: present, Rows: rows}
}

// RequireColumns fails when any of cols is absent from the header.
func RequireColumns(header []string, cols ...string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[NormalizeHeader(h)] = true
	}
	var missing []string
	for _, c := range cols {
		if !have[NormalizeHeader(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewCustomError(apperrors.ErrMissingColumns,
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))).
		WithDetails(map[string]interface{}{"missing": missing})
}
