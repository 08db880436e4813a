package classify

import (
	"math"

	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
)

// Label is the causal classification of one row.
type Label string

const (
	ProcessingDriven Label = "processing-driven"
	QueueDriven      Label = "queue-driven"
	IdleWaiting      Label = "idle-waiting"
	None             Label = "none"
)

// Labels lists every label in cascade priority order.
var Labels = []Label{ProcessingDriven, QueueDriven, IdleWaiting, None}

// Column is the name of the derived label column.
const Column = "classification"

// RequiredColumns are synthesized as zeros when the input lacks them.
var RequiredColumns = []string{"queue_latency_ns", "proc0_ns", "proc1_ns", "inter_output_delta_ns", "gen_ts_ns", "seq"}

// Threshold is a named cut-off derived from the whole table.
type Threshold struct {
	Name  string
	Value float64
}

// Thresholds are computed once over the zero-coerced table.
type Thresholds struct {
	QueueP95 float64
	QueueP99 float64
	Proc0P95 float64
	Proc1P95 float64
	Proc0P99 float64
	Proc1P99 float64
	InterP95 float64
}

// List returns the thresholds in report order.
func (th Thresholds) List() []Threshold {
	return []Threshold{
		{"queue_p95", th.QueueP95},
		{"queue_p99", th.QueueP99},
		{"proc0_p95", th.Proc0P95},
		{"proc1_p95", th.Proc1P95},
		{"proc0_p99", th.Proc0P99},
		{"proc1_p99", th.Proc1P99},
		{"inter_p95", th.InterP95},
	}
}

// ComputeThresholds derives the cascade cut-offs from t.
func ComputeThresholds(t *table.Table) Thresholds {
	q := func(col string, p float64) float64 { return stats.QuantileOf(t.Values(col), p) }
	return Thresholds{
		QueueP95: q("queue_latency_ns", 0.95),
		QueueP99: q("queue_latency_ns", 0.99),
		Proc0P95: q("proc0_ns", 0.95),
		Proc1P95: q("proc1_ns", 0.95),
		Proc0P99: q("proc0_ns", 0.99),
		Proc1P99: q("proc1_ns", 0.99),
		InterP95: q("inter_output_delta_ns", 0.95),
	}
}

// Row applies the priority cascade to one row's timing values.
func (th Thresholds) Row(queue, proc0, proc1, inter float64) Label {
	switch {
	case proc0 > th.Proc0P99 || proc1 > th.Proc1P99:
		return ProcessingDriven
	case queue > th.QueueP95:
		return QueueDriven
	case inter > th.InterP95:
		return IdleWaiting
	default:
		return None
	}
}

// Result is the outcome of classifying a table.
type Result struct {
	Labels     []Label
	Thresholds Thresholds
	Runs       RunStats
	// PeriodNs is the estimated production period, 0 when unknown.
	PeriodNs int64
}

// Counts tallies rows per label.
func (r Result) Counts() map[Label]int {
	out := make(map[Label]int, len(Labels))
	for _, l := range r.Labels {
		out[l]++
	}
	return out
}

// MaxRunDurationNs converts the longest queue-driven run into nanoseconds.
func (r Result) MaxRunDurationNs() int64 {
	return int64(r.Runs.MaxLen) * r.PeriodNs
}

// Rows returns the row indices carrying label l.
func (r Result) Rows(l Label) []int {
	var out []int
	for i, v := range r.Labels {
		if v == l {
			out = append(out, i)
		}
	}
	return out
}

// Classify labels every row of t and appends the classification column.
// t must have been loaded with table.CoerceZero; missing required columns
// are added as zeros.
func Classify(t *table.Table) (Result, error) {
	t.EnsureColumns(RequiredColumns...)
	th := ComputeThresholds(t)
	queue := t.Values("queue_latency_ns")
	proc0 := t.Values("proc0_ns")
	proc1 := t.Values("proc1_ns")
	inter := t.Values("inter_output_delta_ns")

	labels := make([]Label, t.Len())
	raw := make([]string, t.Len())
	for i := range labels {
		labels[i] = th.Row(queue[i], proc0[i], proc1[i], inter[i])
		raw[i] = string(labels[i])
	}
	if err := t.AddText(Column, raw); err != nil {
		return Result{}, err
	}
	return Result{
		Labels:     labels,
		Thresholds: th,
		Runs:       Runs(labels, QueueDriven),
		PeriodNs:   periodOf(t.Column("gen_ts_ns")),
	}, nil
}

func periodOf(c *table.Column) int64 {
	if c.Integer && c.Ints != nil {
		return EstimatePeriodInts(c.Ints)
	}
	return EstimatePeriod(c.Values)
}

// EstimatePeriod returns the median absolute delta between consecutive
// positive generation timestamps, truncated to whole nanoseconds. It needs
// more than two positive timestamps; otherwise it returns 0.
func EstimatePeriod(gen []float64) int64 {
	var pos []float64
	for _, v := range gen {
		if v > 0 {
			pos = append(pos, v)
		}
	}
	if len(pos) <= 2 {
		return 0
	}
	deltas := make([]float64, 0, len(pos)-1)
	for i := 1; i < len(pos); i++ {
		deltas = append(deltas, math.Abs(pos[i]-pos[i-1]))
	}
	m := stats.Median(deltas)
	if math.IsNaN(m) {
		return 0
	}
	return int64(m)
}

// EstimatePeriodInts is EstimatePeriod over exact integer timestamps, which
// keeps full precision for nanosecond epochs.
func EstimatePeriodInts(gen []int64) int64 {
	var prev int64
	seen := 0
	var deltas []float64
	for _, v := range gen {
		if v <= 0 {
			continue
		}
		if seen > 0 {
			d := v - prev
			if d < 0 {
				d = -d
			}
			deltas = append(deltas, float64(d))
		}
		prev = v
		seen++
	}
	if seen <= 2 {
		return 0
	}
	m := stats.Median(deltas)
	if math.IsNaN(m) {
		return 0
	}
	return int64(m)
}
