package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/pairscope/internal/table"
)

func TestQuantileLinear(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.5, 2.5},
		{0.25, 1.75},
		{0.95, 3.85},
		{1, 4},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Quantile(sorted, tc.q), 1e-12, "q=%v", tc.q)
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.99))
}

func TestQuantileOfDropsNaN(t *testing.T) {
	vals := []float64{100, math.NaN(), 100, 100, 100, 10000}
	// position 0.99*4 = 3.96 between 100 and 10000
	assert.InDelta(t, 9604, QuantileOf(vals, 0.99), 1e-9)
	assert.True(t, math.IsNaN(QuantileOf([]float64{math.NaN()}, 0.5)))
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{4, math.NaN(), 1, 3, 2}, true)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.InDelta(t, 2.5, s.P50, 1e-12)
	assert.InDelta(t, 3.85, s.P95, 1e-12)
	assert.InDelta(t, 3.97, s.P99, 1e-12)

	basic := Describe([]float64{4, 1}, false)
	assert.False(t, basic.HasPercentiles)
	assert.True(t, math.IsNaN(basic.P50))
	assert.True(t, math.IsNaN(basic.Std))
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe([]float64{math.NaN(), math.NaN()}, true)
	assert.Equal(t, 0, s.Count)
	for name, v := range map[string]float64{"mean": s.Mean, "min": s.Min, "max": s.Max, "p50": s.P50, "p99": s.P99} {
		assert.True(t, math.IsNaN(v), "%s should be NaN", name)
	}
}

func TestDescribeOrdering(t *testing.T) {
	inputs := [][]float64{
		{5},
		{1, 1, 1},
		{3, -2, 10, 10, 0.5},
		{1e9, 1, 2, 3, math.NaN(), 4},
	}
	for _, vals := range inputs {
		s := Describe(vals, true)
		assert.LessOrEqual(t, s.Min, s.P50, "%v", vals)
		assert.LessOrEqual(t, s.P50, s.Max, "%v", vals)
		assert.LessOrEqual(t, s.Min, s.Mean, "%v", vals)
		assert.LessOrEqual(t, s.Mean, s.Max, "%v", vals)
	}
}

func TestSummarize(t *testing.T) {
	tbl, err := table.FromColumns([]string{"proc0_ns", "seq"}, [][]float64{{1, 2, 3}, {0, 1, 2}})
	require.NoError(t, err)
	out := Summarize(tbl, []string{"proc0_ns", "seq", "absent"}, PercentileColumns)
	require.Len(t, out, 2)
	assert.True(t, out["proc0_ns"].HasPercentiles)
	assert.False(t, out["seq"].HasPercentiles)
	assert.Equal(t, 3, out["seq"].Count)
}

func TestMeanStd(t *testing.T) {
	m, s := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, m, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s, 1e-12)

	m, s = MeanStd([]float64{3})
	assert.Equal(t, 3.0, m)
	assert.True(t, math.IsNaN(s))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 3.0, Median([]float64{3, math.NaN()}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestRollingMedianEdges(t *testing.T) {
	vals := []float64{1, 9, 2, 8, 3}
	// window 3: [0,1], [0,2], [1,3], [2,4], [3,4]
	assert.Equal(t, []float64{5, 2, 8, 3, 5.5}, RollingMedian(vals, 3))

	// even window 4: rows [i-2, i+1]
	assert.Equal(t, []float64{5, 2, 5, 5.5, 3}, RollingMedian(vals, 4))

	// window larger than the series covers everything
	got := RollingMedian(vals, 31)
	for _, v := range got {
		assert.Equal(t, 3.0, v)
	}
}

func TestRollingMedianNaN(t *testing.T) {
	nan := math.NaN()
	got := RollingMedian([]float64{nan, nan, 4, nan}, 3)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 4.0, got[1])
	assert.Equal(t, 4.0, got[2])
	assert.Equal(t, 4.0, got[3])
}
