// Package stats provides the descriptive statistics used across pairscope:
// linear-interpolation quantiles, NaN-aware summaries and centered rolling
// medians.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/pairscope/internal/table"
)

// Percentile columns get p50/p95/p99 in addition to count/mean/min/max.
var PercentileColumns = map[string]bool{
	"queue_latency_ns": true,
	"proc0_ns":         true,
	"proc1_ns":         true,
}

// Summary holds descriptive statistics for one column. Fields that do not
// apply (or cannot be computed for an empty column) are NaN.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	P50   float64
	P95   float64
	P99   float64
	// HasPercentiles is true when Std and P50/P95/P99 were computed.
	HasPercentiles bool
}

// Describe summarizes values after dropping NaN.
func Describe(values []float64, withPercentiles bool) Summary {
	nan := math.NaN()
	s := Summary{Mean: nan, Std: nan, Min: nan, Max: nan, P50: nan, P95: nan, P99: nan, HasPercentiles: withPercentiles}
	vals := DropNaN(values)
	s.Count = len(vals)
	if len(vals) == 0 {
		return s
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	mean, std := MeanStd(vals)
	s.Mean = mean
	if withPercentiles {
		s.Std = std
		s.P50 = Quantile(sorted, 0.5)
		s.P95 = Quantile(sorted, 0.95)
		s.P99 = Quantile(sorted, 0.99)
	}
	return s
}

// Summarize describes every listed column; percentile columns get the full set.
func Summarize(t *table.Table, cols []string, pctCols map[string]bool) map[string]Summary {
	out := make(map[string]Summary, len(cols))
	for _, name := range cols {
		vals := t.Values(name)
		if vals == nil {
			continue
		}
		out[name] = Describe(vals, pctCols[name])
	}
	return out
}

// DropNaN returns the non-NaN values in order.
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// MeanStd returns the mean and sample standard deviation (n-1) of the
// non-NaN values. Std is NaN with fewer than two values.
func MeanStd(values []float64) (mean, std float64) {
	vals := DropNaN(values)
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], math.NaN()
	}
	return stat.MeanStdDev(vals, nil)
}

// NanMean is the mean of the non-NaN values, NaN when there are none.
func NanMean(values []float64) float64 {
	vals := DropNaN(values)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Median of the non-NaN values, NaN when there are none.
func Median(values []float64) float64 {
	vals := DropNaN(values)
	if len(vals) == 0 {
		return math.NaN()
	}
	m, err := mstats.Median(vals)
	if err != nil {
		return math.NaN()
	}
	return m
}

// QuantileOf returns the q-quantile of the non-NaN values, NaN when empty.
func QuantileOf(values []float64, q float64) float64 {
	vals := DropNaN(values)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	return Quantile(vals, q)
}

// Quantile interpolates linearly between the order statistics of sorted
// at position q*(n-1).
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	a, b := sorted[lo], sorted[hi]
	// Interpolate from the nearer end to keep the rounding of the reference.
	if w >= 0.5 {
		return b - (b-a)*(1-w)
	}
	return a + (b-a)*w
}

// RollingMedian computes a centered rolling median with a minimum of one
// observation. The window for row i covers [i+off+1-window, i+off] with
// off=(window-1)/2, clipped to the series, so it shrinks at both edges.
// NaN values are skipped; a window with no values yields NaN.
func RollingMedian(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if window < 1 {
		window = 1
	}
	off := (window - 1) / 2
	buf := make([]float64, 0, window)
	for i := 0; i < n; i++ {
		end := i + off
		start := end + 1 - window
		if start < 0 {
			start = 0
		}
		if end > n-1 {
			end = n - 1
		}
		buf = buf[:0]
		for j := start; j <= end; j++ {
			if !math.IsNaN(values[j]) {
				buf = append(buf, values[j])
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		m, err := mstats.Median(buf)
		if err != nil {
			m = math.NaN()
		}
		out[i] = m
	}
	return out
}
