package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/pairscope/internal/table"
	"github.com/KaramelBytes/pairscope/internal/utils"
)

// ContextColumns identify a row; kept in spike output without statistics.
var ContextColumns = []string{"seq", "gen_ts_ns", "gen_ts_valid", "pop_ts_ns", "proc_start_ns", "out0_ts_ns", "out1_ts_ns"}

// TimingColumns are the duration columns.
var TimingColumns = []string{"queue_latency_ns", "proc0_ns", "proc1_ns", "inter_output_delta_ns"}

// FormatCell renders one cell deterministically. Integer columns print as
// integers, other numeric columns in shortest round-trip form with a
// trailing ".0" for integral values, missing numbers as empty cells and
// text columns verbatim.
func FormatCell(c *table.Column, row int) string {
	if !c.Numeric {
		return c.Raw[row]
	}
	if c.Integer && c.Ints != nil {
		return strconv.FormatInt(c.Ints[row], 10)
	}
	return FormatFloat(c.Values[row])
}

// FormatFloat prints v like a float column value: 100 -> "100.0",
// 1.5 -> "1.5", 1e16 -> "1e+16", NaN -> "".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// EncodeRows renders the selected rows and columns as CSV. When withIndex is
// set, the first column holds the row label and is headed by the index name.
func EncodeRows(t *table.Table, rows []int, cols []string, withIndex bool) ([]byte, error) {
	selected := make([]*table.Column, 0, len(cols))
	for _, name := range cols {
		c := t.Column(name)
		if c == nil {
			return nil, fmt.Errorf("encode csv: unknown column %q", name)
		}
		selected = append(selected, c)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, 0, len(cols)+1)
	if withIndex {
		header = append(header, t.IndexName)
	}
	header = append(header, cols...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(header))
	for _, r := range rows {
		rec = rec[:0]
		if withIndex {
			rec = append(rec, t.IndexLabel(r))
		}
		for _, c := range selected {
			rec = append(rec, FormatCell(c, r))
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// SpikeColumns returns the context and timing columns present in t.
func SpikeColumns(t *table.Table) []string {
	return append(t.Present(ContextColumns...), t.Present(TimingColumns...)...)
}

// WriteSpikes writes the flagged rows, restricted to context and timing
// columns, with the row index as the first column.
func WriteSpikes(path string, t *table.Table, rows []int) error {
	b, err := EncodeRows(t, rows, SpikeColumns(t), true)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write spikes csv: %w", err)
	}
	return nil
}

// WriteTable writes every row and column of t without an index column.
func WriteTable(path string, t *table.Table) error {
	names := make([]string, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		names = append(names, c.Name)
	}
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	b, err := EncodeRows(t, rows, names, false)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write table csv: %w", err)
	}
	return nil
}
