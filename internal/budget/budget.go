// Package budget checks per-row processing times against a fixed budget.
package budget

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
)

// DefaultBudgetNs is the per-pixel budget in nanoseconds.
const DefaultBudgetNs = 1_000_000

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// Columns are described in the report, in order.
var Columns = []string{"proc0_ns", "proc1_ns", "inter_output_delta_ns"}

// ColumnStats pairs a column name with its summary.
type ColumnStats struct {
	Name    string
	Summary stats.Summary
}

// Report is the budget evaluation of one table.
type Report struct {
	Rows     int
	BudgetNs float64
	Stats    []ColumnStats
	// Pass fractions count NaN as failing and keep it in the denominator.
	PassProc0  float64
	PassProc1  float64
	PassBoth   float64
	CountProc0 int
}

// Evaluate describes the timing columns and computes pass fractions.
func Evaluate(t *table.Table, budgetNs float64) (*Report, error) {
	for _, c := range Columns {
		if !t.Has(c) {
			return nil, fmt.Errorf("evaluate budget: %w %q", ErrMissingColumn, c)
		}
	}
	rep := &Report{Rows: t.Len(), BudgetNs: budgetNs}
	for _, c := range Columns {
		rep.Stats = append(rep.Stats, ColumnStats{Name: c, Summary: stats.Describe(t.Values(c), true)})
	}

	proc0 := t.Values("proc0_ns")
	proc1 := t.Values("proc1_ns")
	var n0, n1, both int
	for i := range proc0 {
		// NaN <= budget is false, so missing rows fail.
		p0 := proc0[i] <= budgetNs
		p1 := proc1[i] <= budgetNs
		if p0 {
			n0++
		}
		if p1 {
			n1++
		}
		if p0 && p1 {
			both++
		}
	}
	rep.CountProc0 = n0
	if rep.Rows > 0 {
		total := float64(rep.Rows)
		rep.PassProc0 = float64(n0) / total
		rep.PassProc1 = float64(n1) / total
		rep.PassBoth = float64(both) / total
	} else {
		nan := math.NaN()
		rep.PassProc0, rep.PassProc1, rep.PassBoth = nan, nan, nan
	}
	return rep, nil
}
