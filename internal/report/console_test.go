package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pairscope/internal/budget"
	"github.com/KaramelBytes/pairscope/internal/classify"
	"github.com/KaramelBytes/pairscope/internal/spikes"
	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
)

func TestPrintRows(t *testing.T) {
	tbl, err := table.FromColumns([]string{"seq", "queue_latency_ns"}, [][]float64{{0, 1}, {12.5, math.NaN()}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintRows(&buf, Columns(tbl, "seq", "absent", "queue_latency_ns"), []int{1, 0}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "queue_latency_ns")
	assert.NotContains(t, lines[0], "absent")
	assert.Contains(t, lines[1], "NaN")
	assert.Contains(t, lines[2], "12.5")
}

func TestTimingSummarySkipsColumnsWithoutPercentiles(t *testing.T) {
	sum := map[string]stats.Summary{
		"proc0_ns": stats.Describe([]float64{1, 2, 3}, true),
		"seq":      stats.Describe([]float64{1, 2, 3}, false),
	}
	var buf bytes.Buffer
	TimingSummary(&buf, []string{"proc0_ns", "seq"}, sum)
	out := buf.String()
	assert.Contains(t, out, "- proc0_ns: p50=2 p95=2.9 p99=2.98 max=3")
	assert.NotContains(t, out, "seq")
}

func TestClassificationReport(t *testing.T) {
	res := classify.Result{
		Labels:     []classify.Label{classify.QueueDriven, classify.QueueDriven, classify.None},
		Thresholds: classify.Thresholds{QueueP95: 1234.4},
		PeriodNs:   500_000,
	}
	res.Runs = classify.Runs(res.Labels, classify.QueueDriven)

	var buf bytes.Buffer
	Thresholds(&buf, res.Thresholds)
	require.NoError(t, LabelCounts(&buf, res.Counts()))
	RunSummary(&buf, res)
	out := buf.String()

	assert.Contains(t, out, " - queue_p95: 1234 ns")
	assert.Less(t, strings.Index(out, "queue-driven"), strings.Index(out, "none"), "most frequent label first")
	assert.Contains(t, out, " - max run length (rows): 2")
	assert.Contains(t, out, " - avg run length (rows): 2.00")
	assert.Contains(t, out, "estimated max run duration: 1.000 ms")
}

func TestRunSummaryWithoutPeriod(t *testing.T) {
	var buf bytes.Buffer
	RunSummary(&buf, classify.Result{})
	assert.NotContains(t, buf.String(), "estimated max run duration")
}

func TestBudgetReport(t *testing.T) {
	tbl, err := table.FromColumns(budget.Columns, [][]float64{{500_000, 1_500_000}, {1, 2}, {3, 4}})
	require.NoError(t, err)
	rep, err := budget.Evaluate(tbl, budget.DefaultBudgetNs)
	require.NoError(t, err)

	var buf bytes.Buffer
	Budget(&buf, rep)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Rows: 2\n"))
	assert.Contains(t, out, "Pass fractions (<= 1000000 ns):")
	assert.Contains(t, out, "  proc0: 0.5\n")
	assert.Contains(t, out, "  both: 0.5\n")
	assert.Contains(t, out, "  proc0 pass count: 1 / 2\n")
}

func TestPlotSeriesWritesPNG(t *testing.T) {
	n := 40
	q := make([]float64, n)
	p := make([]float64, n)
	for i := range q {
		q[i] = float64(100 + i%5)
		p[i] = float64(10 + i%3)
	}
	q[20] = 5000
	p[7] = math.NaN()
	tbl, err := table.FromColumns([]string{"queue_latency_ns", "proc0_ns"}, [][]float64{q, p})
	require.NoError(t, err)
	res := spikes.NewDetector(spikes.DefaultOptions()).Table(tbl, tbl.NumericColumns())

	path := filepath.Join(t.TempDir(), "run_analysis.png")
	opt := DefaultPlotOptions()
	opt.DPI = 72
	require.NoError(t, PlotSeries(path, tbl, tbl.NumericColumns(), res.Masks, opt))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), b[:8])

	assert.Error(t, PlotSeries(path, tbl, nil, res.Masks, opt))
}
