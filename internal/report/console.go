package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/pairscope/internal/budget"
	"github.com/KaramelBytes/pairscope/internal/classify"
	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
)

// TopRows returns up to n of rows ordered by key descending. Ties keep row
// order and NaN keys sort last.
func TopRows(rows []int, key []float64, n int) []int {
	out := make([]int, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := key[out[i]], key[out[j]]
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MaxColumn builds the row-wise maximum of two columns, NaN-skipping, as a
// standalone column that is not attached to any table.
func MaxColumn(name string, a, b *table.Column) *table.Column {
	n := len(a.Values)
	c := &table.Column{Name: name, Numeric: true, Integer: a.Integer && b.Integer, Values: make([]float64, n), Raw: make([]string, n)}
	if c.Integer {
		c.Ints = make([]int64, n)
	}
	for i := 0; i < n; i++ {
		x, y := a.Values[i], b.Values[i]
		switch {
		case math.IsNaN(x):
			c.Values[i] = y
		case math.IsNaN(y):
			c.Values[i] = x
		default:
			c.Values[i] = math.Max(x, y)
		}
		if c.Integer {
			c.Ints[i] = max(a.Ints[i], b.Ints[i])
		}
	}
	return c
}

// PrintRows writes an aligned text table of the given rows.
func PrintRows(w io.Writer, cols []*table.Column, rows []int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t")+"\t")
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = FormatCell(c, r)
			if cells[i] == "" && c.Numeric {
				cells[i] = "NaN"
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

// Columns resolves names present in t to columns, skipping the rest.
func Columns(t *table.Table, names ...string) []*table.Column {
	var out []*table.Column
	for _, n := range names {
		if c := t.Column(n); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// TimingSummary prints p50/p95/p99/max for timing columns that carry percentiles.
func TimingSummary(w io.Writer, cols []string, sum map[string]stats.Summary) {
	fmt.Fprintln(w, "Timing summary:")
	for _, c := range cols {
		s, ok := sum[c]
		if !ok || !s.HasPercentiles {
			continue
		}
		fmt.Fprintf(w, "- %s: p50=%.3g p95=%.3g p99=%.3g max=%.3g\n", c, s.P50, s.P95, s.P99, s.Max)
	}
}

// Thresholds prints the classifier cut-offs in whole nanoseconds.
func Thresholds(w io.Writer, th classify.Thresholds) {
	fmt.Fprintln(w, "Computed thresholds:")
	for _, x := range th.List() {
		fmt.Fprintf(w, " - %s: %.0f ns\n", x.Name, x.Value)
	}
}

// LabelCounts prints row counts per label, most frequent first.
func LabelCounts(w io.Writer, counts map[classify.Label]int) error {
	type lc struct {
		label classify.Label
		n     int
	}
	var list []lc
	for _, l := range classify.Labels {
		if counts[l] > 0 {
			list = append(list, lc{l, counts[l]})
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].n > list[j].n })
	fmt.Fprintln(w, "Spike classification counts:")
	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)
	for _, x := range list {
		fmt.Fprintf(tw, "%s\t%d\n", x.label, x.n)
	}
	return tw.Flush()
}

// RunSummary prints queue-driven run statistics and, when the production
// period is known, the estimated duration of the longest run.
func RunSummary(w io.Writer, res classify.Result) {
	fmt.Fprintln(w, "Queue-run stats:")
	fmt.Fprintf(w, " - number of queue-driven runs: %d\n", res.Runs.Count)
	fmt.Fprintf(w, " - max run length (rows): %d\n", res.Runs.MaxLen)
	fmt.Fprintf(w, " - avg run length (rows): %.2f\n", res.Runs.AvgLen)
	if res.PeriodNs > 0 {
		ms := float64(res.MaxRunDurationNs()) / 1e6
		fmt.Fprintf(w, " - estimated max run duration: %.3f ms (using median gen delta)\n", ms)
	}
}

// Budget prints per-column statistics and pass fractions.
func Budget(w io.Writer, rep *budget.Report) {
	fmt.Fprintln(w, "Rows:", rep.Rows)
	for _, cs := range rep.Stats {
		s := cs.Summary
		fmt.Fprintf(w, "\n%s:\n", cs.Name)
		fmt.Fprintf(w, "  mean: %v\n", s.Mean)
		fmt.Fprintf(w, "  min: %v\n", s.Min)
		fmt.Fprintf(w, "  max: %v\n", s.Max)
		fmt.Fprintf(w, "  median: %v\n", s.P50)
		fmt.Fprintf(w, "  95%%: %v\n", s.P95)
		fmt.Fprintf(w, "  99%%: %v\n", s.P99)
	}
	fmt.Fprintf(w, "\nPass fractions (<= %.0f ns):\n", rep.BudgetNs)
	fmt.Fprintln(w, "  proc0:", rep.PassProc0)
	fmt.Fprintln(w, "  proc1:", rep.PassProc1)
	fmt.Fprintln(w, "  both:", rep.PassBoth)
	fmt.Fprintln(w, "\nCounts:")
	fmt.Fprintln(w, "  proc0 pass count:", rep.CountProc0, "/", rep.Rows)
}
