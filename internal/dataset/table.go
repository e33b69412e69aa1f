package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apierrors "retailsmart/internal/errors"
)

const bom = "\uFEFF"

// nullTokens are the cell values treated as missing
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
}

// dateLayouts are tried in order when parsing date cells
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// RawTable is a CSV file as read from disk
type RawTable struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReadCSV reads the CSV file at path into a RawTable
func ReadCSV(name, path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseCSV(name, path, file)
}

// ParseCSV reads CSV content from r. Short and long rows are kept as-is.
func ParseCSV(name, path string, r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apierrors.NewParsingError(fmt.Sprintf("%s: empty file", name), err)
	}
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("%s: failed to read CSV header", name), err)
	}
	for i := range header {
		header[i] = cleanHeader(header[i])
	}

	table := &RawTable{Name: name, Path: path, Headers: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierrors.NewParsingError(fmt.Sprintf("%s: failed to read CSV row %d", name, len(table.Rows)+2), err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cell returns row[col], or "" when the row is too short or col is negative
func (t *RawTable) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// NullCells counts missing cells, including cells absent from short rows
func (t *RawTable) NullCells() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, row := range t.Rows {
		for i := range t.Headers {
			if i >= len(row) || IsNull(row[i]) {
				n++
			}
		}
	}
	return n
}

// Head returns up to limit rows padded to the header width
func (t *RawTable) Head(limit int) [][]string {
	if t == nil {
		return nil
	}
	if limit < 0 || limit > len(t.Rows) {
		limit = len(t.Rows)
	}
	rows := make([][]string, 0, limit)
	for _, row := range t.Rows[:limit] {
		padded := make([]string, len(t.Headers))
		copy(padded, row)
		rows = append(rows, padded)
	}
	return rows
}

// IsNull reports whether a cell value is a missing-value token
func IsNull(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

// ParseFloat parses a numeric cell. ok is false for null or unparseable values.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate parses a date cell using the accepted layouts. Results are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, bom))
}
