package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNoNumericColumns is returned by callers that need at least one numeric column.
var ErrNoNumericColumns = errors.New("no numeric columns found in the CSV to analyze")

// Coerce selects how cells that are missing or not numbers are represented.
type Coerce int

const (
	// CoerceMissing keeps such cells as NaN; a column with any non-numeric
	// token is not numeric.
	CoerceMissing Coerce = iota
	// CoerceZero turns such cells into 0 and makes every column numeric.
	CoerceZero
)

// Options controls how a metrics CSV is read.
type Options struct {
	Coerce Coerce
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
}

// DefaultOptions returns options for the analyzer and metrics readers.
func DefaultOptions() Options {
	return Options{Coerce: CoerceMissing}
}

// Column holds one named column in file order.
type Column struct {
	Name string
	// Raw keeps the original cell text (trimmed).
	Raw []string
	// Values holds parsed numbers; NaN marks missing or unparseable cells
	// under CoerceMissing.
	Values []float64
	// Numeric reports whether every present cell parsed as a number.
	Numeric bool
	// Integer reports whether every cell is present and integral.
	Integer bool
	// Ints holds exact values for Integer columns; nil otherwise.
	Ints []int64
}

// Table is an ordered, row-aligned set of columns read from a CSV file.
type Table struct {
	Name string
	// IndexName is the name of the column used as the row index, if any.
	IndexName string
	// Times holds parsed index timestamps when a time index is set.
	Times []time.Time

	rows   int
	cols   []*Column
	byName map[string]int
}

// Load reads a CSV file with a header row into a Table.
func Load(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	t, err := Read(f, delim, opt.Coerce)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Read parses CSV content from r.
func Read(r io.Reader, delim rune, coerce Coerce) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	cols := make([]*Column, ncol)
	for i := range header {
		cols[i] = &Column{Name: strings.TrimSpace(header[i]), Numeric: true, Integer: true}
	}

	rows := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		rows++
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			c := cols[j]
			c.Raw = append(c.Raw, v)
			if isMissing(v) {
				c.Integer = false
				c.Values = append(c.Values, missingValue(coerce))
				continue
			}
			x, ok := parseNumeric(v)
			if !ok {
				c.Numeric = false
				c.Integer = false
				c.Values = append(c.Values, missingValue(coerce))
				continue
			}
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.Ints = append(c.Ints, n)
			} else {
				c.Integer = false
			}
			c.Values = append(c.Values, x)
		}
	}

	t := New()
	t.rows = rows
	for _, c := range cols {
		if coerce == CoerceZero {
			c.Numeric = true
		}
		if !c.Integer {
			c.Ints = nil
		}
		t.add(c)
	}
	return t, nil
}

// New returns an empty table.
func New() *Table {
	return &Table{byName: map[string]int{}}
}

// FromColumns builds a table from equal-length numeric columns. Useful for
// tests and derived datasets.
func FromColumns(names []string, values [][]float64) (*Table, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("build table: %d names for %d columns", len(names), len(values))
	}
	t := New()
	for i, name := range names {
		if i > 0 && len(values[i]) != len(values[0]) {
			return nil, fmt.Errorf("build table: column %q has %d rows, want %d", name, len(values[i]), len(values[0]))
		}
		c := &Column{Name: name, Numeric: true, Integer: true, Values: values[i]}
		c.Raw = make([]string, len(values[i]))
		for j, x := range values[i] {
			if math.IsNaN(x) {
				c.Integer = false
				continue
			}
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				c.Integer = false
			}
			c.Raw[j] = strconv.FormatFloat(x, 'f', -1, 64)
		}
		if c.Integer {
			c.Ints = make([]int64, len(values[i]))
			for j, x := range values[i] {
				c.Ints[j] = int64(x)
			}
		}
		t.rows = len(values[i])
		t.add(c)
	}
	return t, nil
}

func (t *Table) add(c *Column) {
	if idx, ok := t.byName[c.Name]; ok {
		t.cols[idx] = c
		return
	}
	t.byName[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the columns in file order.
func (t *Table) Columns() []*Column { return t.cols }

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	idx, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.cols[idx]
}

// Values returns the parsed values of the named column, or nil when absent.
func (t *Table) Values(name string) []float64 {
	if c := t.Column(name); c != nil {
		return c.Values
	}
	return nil
}

// NumericColumns returns the names of numeric columns in file order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.cols {
		if c.Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Present filters names down to the columns that exist, keeping order.
func (t *Table) Present(names ...string) []string {
	var out []string
	for _, n := range names {
		if t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// EnsureColumns appends a zero-filled integer column for every missing name.
func (t *Table) EnsureColumns(names ...string) {
	for _, n := range names {
		if t.Has(n) {
			continue
		}
		c := &Column{Name: n, Numeric: true, Integer: true}
		c.Raw = make([]string, t.rows)
		c.Values = make([]float64, t.rows)
		c.Ints = make([]int64, t.rows)
		for i := range c.Raw {
			c.Raw[i] = "0"
		}
		t.add(c)
	}
}

// AddText appends (or replaces) a derived text column such as a label.
func (t *Table) AddText(name string, vals []string) error {
	if len(vals) != t.rows {
		return fmt.Errorf("add column %q: %d values for %d rows", name, len(vals), t.rows)
	}
	c := &Column{Name: name, Raw: vals, Values: make([]float64, len(vals))}
	for i := range c.Values {
		c.Values[i] = math.NaN()
	}
	t.add(c)
	return nil
}

// SetTimeIndex promotes the named column to a timestamp row index.
// It returns false, leaving the table unchanged, when the column is absent
// or any present cell cannot be read as a time.
func (t *Table) SetTimeIndex(name string) bool {
	c := t.Column(name)
	if c == nil {
		return false
	}
	times := make([]time.Time, t.rows)
	for i, v := range c.Raw {
		if isMissing(v) {
			continue
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			times[i] = time.Unix(0, n).UTC()
			continue
		}
		if x, ok := parseNumeric(v); ok {
			times[i] = time.Unix(0, int64(x)).UTC()
			continue
		}
		ts, ok := parseTimeMaybe(v)
		if !ok {
			return false
		}
		times[i] = ts
	}
	idx := t.byName[name]
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	delete(t.byName, name)
	for i, col := range t.cols {
		t.byName[col.Name] = i
	}
	t.IndexName = name
	t.Times = times
	return true
}

// IndexLabel renders the row label used in CSV output.
func (t *Table) IndexLabel(row int) string {
	if t.Times == nil {
		return strconv.Itoa(row)
	}
	ts := t.Times[row]
	if ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02 15:04:05.999999999")
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(v string) bool {
	_, ok := naTokens[v]
	return ok
}

func missingValue(c Coerce) float64 {
	if c == CoerceZero {
		return 0
	}
	return math.NaN()
}

func parseNumeric(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006/01/02",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
