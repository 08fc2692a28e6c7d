/*
Package tables loads the read-only reference tables the forecast consumes.

PURPOSE:
  Reads tabular files (CSV or the first sheet of an XLSX workbook), locates
  columns by header name, and converts rows into forecast records. Loaded
  tables are immutable after load and shared across runs through Cache.

SUPPORTED FORMATS:
  .csv   encoding/csv, header on the first line, UTF-8 BOM tolerated
  .xlsx  excelize, first sheet, header on the first row

TABLES:
  yearly       Material No, oem, year, cons_wip, cons_woip, buffer_stock,
               leadtime [, net_req, present_stock, Desc]
  reliability  Material No, Reliability_365days
  leadtime     Material No, prpo_forecasted, pogr_forecasted, grgi_forecasted
  master       Material No plus any descriptive columns

ERRORS:
  Missing required column or unparsable number: *forecast.SchemaError
  Unreadable file: *forecast.IOFailure

SEE ALSO:
  - cache.go: Read-through cache keyed by path
  - forecast/params.go: Consumes the yearly rows
*/
package tables

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/accountrms/forecasting/forecast"
)

// =============================================================================
// SHEET - Header-indexed rows from one file
// =============================================================================

// Sheet is a raw table: a header plus string cells.
type Sheet struct {
	Source string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadSheet reads a CSV or XLSX file, picking the reader by extension.
func ReadSheet(path string) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return newSheet(path, records)
}

func newSheet(source string, records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, &forecast.SchemaError{Source: source, Reason: "empty table"}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	s := &Sheet{
		Source: source,
		Header: header,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		if _, dup := s.index[h]; !dup {
			s.index[h] = i
		}
	}

	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &forecast.IOFailure{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &forecast.SchemaError{Source: path, Row: parseErr.Line, Reason: "malformed csv: " + parseErr.Err.Error()}
		}
		return nil, &forecast.IOFailure{Op: "read", Path: path, Err: err}
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &forecast.IOFailure{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &forecast.SchemaError{Source: path, Reason: "no sheets"}
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, &forecast.IOFailure{Op: "read", Path: path, Err: err}
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, &forecast.IOFailure{Op: "read", Path: path, Err: err}
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		return nil, &forecast.IOFailure{Op: "read", Path: path, Err: err}
	}
	return records, nil
}

// =============================================================================
// COLUMN ACCESS
// =============================================================================

// Column returns the index of a required column.
func (s *Sheet) Column(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, &forecast.SchemaError{Source: s.Source, Column: name, Reason: "missing required column"}
	}
	return i, nil
}

// OptionalColumn returns -1 when the column is absent.
func (s *Sheet) OptionalColumn(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// columns resolves several required columns at once.
func (s *Sheet) columns(names ...string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	for _, n := range names {
		i, err := s.Column(n)
		if err != nil {
			return nil, err
		}
		out[n] = i
	}
	return out, nil
}

// rowNumber is the 1-based file row of Rows[i], counting the header.
func rowNumber(i int) int { return i + 2 }

func (s *Sheet) text(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func (s *Sheet) number(i int, col int, name string) (float64, error) {
	raw := s.text(s.Rows[i], col)
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &forecast.SchemaError{Source: s.Source, Column: name, Row: rowNumber(i), Value: raw, Reason: "non-numeric value in column"}
	}
	return v, nil
}

// optionalNumber treats an absent column or empty cell as zero.
func (s *Sheet) optionalNumber(i int, col int, name string) (float64, error) {
	if col < 0 || s.text(s.Rows[i], col) == "" {
		return 0, nil
	}
	return s.number(i, col, name)
}

func (s *Sheet) integer(i int, col int, name string) (int, error) {
	v, err := s.number(i, col, name)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, &forecast.SchemaError{Source: s.Source, Column: name, Row: rowNumber(i), Value: s.text(s.Rows[i], col), Reason: "non-integer value in column"}
	}
	return int(v), nil
}

// materialID normalizes identifiers that spreadsheets store as numbers.
func materialID(raw string) forecast.MaterialID {
	if strings.HasSuffix(raw, ".0") {
		if _, err := strconv.ParseInt(strings.TrimSuffix(raw, ".0"), 10, 64); err == nil {
			raw = strings.TrimSuffix(raw, ".0")
		}
	}
	return forecast.MaterialID(raw)
}
