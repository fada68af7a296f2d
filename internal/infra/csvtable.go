package infra

// csvtable.go: header-addressed CSV reader used by the dataset repository.
// Every typed accessor reports failures with file, 1-based line and column so
// that a bad cell aborts startup with a precise diagnostic.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyCell is returned when a required value is blank.
var ErrEmptyCell = errors.New("empty value")

// dateLayouts are tried in order for every date-like cell.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"01/02/2006 15:04",
}

// CSVTable is a fully read CSV file addressed by header name.
type CSVTable struct {
	name    string
	header  map[string]int
	records [][]string
	pool    map[string]string
}

// ReadCSVTable reads every record from r. name is used in error messages
// (usually the file name).
func ReadCSVTable(name string, r io.Reader) (*CSVTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row", name)
	}

	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		header[col] = i
	}
	return &CSVTable{
		name:    name,
		header:  header,
		records: records[1:],
		pool:    make(map[string]string),
	}, nil
}

// Name returns the name the table was read under.
func (t *CSVTable) Name() string { return t.name }

// Len is the number of data rows.
func (t *CSVTable) Len() int { return len(t.records) }

// Has reports whether the header contains col.
func (t *CSVTable) Has(col string) bool {
	_, ok := t.header[col]
	return ok
}

// Require fails with ErrMissingColumn listing every absent column.
func (t *CSVTable) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", t.name, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Row returns the i-th data row (0-based).
func (t *CSVTable) Row(i int) *CSVRow {
	// +2: one for the header, one for 1-based numbering.
	return &CSVRow{table: t, line: i + 2, record: t.records[i]}
}

// intern returns a shared copy of s so that low-cardinality columns keep a
// single backing string per distinct value.
func (t *CSVTable) intern(s string) string {
	if v, ok := t.pool[s]; ok {
		return v
	}
	t.pool[s] = s
	return s
}

// CSVRow is one record. Accessors never panic; the first conversion failure
// is kept and returned by Err, and later accessors return zero values.
type CSVRow struct {
	table  *CSVTable
	line   int
	record []string
	err    error
}

// Err returns the first conversion error seen on this row.
func (r *CSVRow) Err() error { return r.err }

// Line is the 1-based line number in the source file.
func (r *CSVRow) Line() int { return r.line }

func (r *CSVRow) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s line %d column %q: %w", r.table.name, r.line, col, err)
	}
}

func (r *CSVRow) raw(col string) string {
	i, ok := r.table.header[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *CSVRow) required(col string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v := r.raw(col)
	if v == "" {
		r.fail(col, ErrEmptyCell)
		return "", false
	}
	return v, true
}

// String returns the trimmed cell, or "" when the column is absent.
func (r *CSVRow) String(col string) string { return r.raw(col) }

// OptionalString returns nil for an empty or absent cell.
func (r *CSVRow) OptionalString(col string) *string {
	v := r.raw(col)
	if v == "" {
		return nil
	}
	return &v
}

// Category returns the interned cell value.
func (r *CSVRow) Category(col string) string { return r.table.intern(r.raw(col)) }

// Key parses a required integer identifier.
func (r *CSVRow) Key(col string) int64 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	n, err := parseInteger(v)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return n
}

// Int32 parses a required integer that must fit in 32 bits.
func (r *CSVRow) Int32(col string) int32 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	n, err := parseInteger(v)
	if err == nil && (n > math.MaxInt32 || n < math.MinInt32) {
		err = fmt.Errorf("%d overflows int32", n)
	}
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return int32(n)
}

// NullableFloat parses a floating point value; an empty or absent cell
// becomes NaN.
func (r *CSVRow) NullableFloat(col string) float64 {
	if r.err != nil {
		return 0
	}
	v := r.raw(col)
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, err)
		return 0
	}
	return f
}

// Bool parses a required boolean ("true", "False", "1", "0", ...).
func (r *CSVRow) Bool(col string) bool {
	v, ok := r.required(col)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(col, err)
		return false
	}
	return b
}

// Time parses a required date or timestamp.
func (r *CSVRow) Time(col string) time.Time {
	v, ok := r.required(col)
	if !ok {
		return time.Time{}
	}
	t, err := ParseDate(v)
	if err != nil {
		r.fail(col, err)
		return time.Time{}
	}
	return t
}

// OptionalTime parses a date; an empty or absent cell yields nil.
func (r *CSVRow) OptionalTime(col string) *time.Time {
	if r.err != nil {
		return nil
	}
	v := r.raw(col)
	if v == "" {
		return nil
	}
	t, err := ParseDate(v)
	if err != nil {
		r.fail(col, err)
		return nil
	}
	return &t
}

// ParseDate accepts the date and timestamp layouts found in the source files.
// Values without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseInteger(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	// Spreadsheet exports sometimes write integers as "12.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int64(f), nil
}
