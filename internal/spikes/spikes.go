package spikes

import (
	"math"

	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
)

// WatchedColumns are the timing columns spike detection runs on.
var WatchedColumns = []string{"queue_latency_ns", "proc0_ns", "proc1_ns", "inter_output_delta_ns"}

// Options tunes the three detectors.
type Options struct {
	// ZThreshold flags |z| above this value.
	ZThreshold float64
	// Percentile flags values above this quantile of the column.
	Percentile float64
	// Window is the centered rolling window in rows; values below 3 are raised to 3.
	Window int
	// RollingMult flags deviations above RollingMult * rolling MAD.
	RollingMult float64
}

// DefaultOptions returns the reference detector settings.
func DefaultOptions() Options {
	return Options{ZThreshold: 3.0, Percentile: 0.99, Window: 31, RollingMult: 5.0}
}

// Mask is a per-row spike flag for one column.
type Mask []bool

// Any reports whether at least one row is flagged.
func (m Mask) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// Count returns the number of flagged rows.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Detail keeps the per-detector masks for one column.
type Detail struct {
	ZScore     Mask
	Percentile Mask
	Local      Mask
}

// Detect flags rows of values that any of the z-score, percentile or local
// robust-deviation detectors consider anomalous. NaN rows are never spikes.
func Detect(values []float64, opt Options) Mask {
	d := DetectDetail(values, opt)
	out := make(Mask, len(values))
	for i := range out {
		out[i] = d.ZScore[i] || d.Percentile[i] || d.Local[i]
	}
	return out
}

// DetectDetail runs each detector separately.
func DetectDetail(values []float64, opt Options) Detail {
	return Detail{
		ZScore:     zScore(values, opt.ZThreshold),
		Percentile: percentile(values, opt.Percentile),
		Local:      local(values, opt.Window, opt.RollingMult),
	}
}

func zScore(values []float64, thr float64) Mask {
	out := make(Mask, len(values))
	mean, std := stats.MeanStd(values)
	if std == 0 {
		std = 1.0
	}
	for i, v := range values {
		z := (v - mean) / std
		out[i] = math.Abs(z) > thr
	}
	return out
}

func percentile(values []float64, p float64) Mask {
	out := make(Mask, len(values))
	q := stats.QuantileOf(values, p)
	for i, v := range values {
		out[i] = v > q
	}
	return out
}

func local(values []float64, window int, mult float64) Mask {
	if window < 3 {
		window = 3
	}
	med := stats.RollingMedian(values, window)
	resid := make([]float64, len(values))
	for i, v := range values {
		resid[i] = math.Abs(v - med[i])
	}
	mad := stats.RollingMedian(resid, window)
	// Zero or undefined windows fall back to the mean MAD of the column.
	fallback := stats.NanMean(mad)
	out := make(Mask, len(values))
	for i, v := range values {
		m := mad[i]
		if m == 0 || math.IsNaN(m) {
			m = fallback
		}
		out[i] = (v - med[i]) > mult*m
	}
	return out
}

// Result holds the masks for every numeric column of a table.
type Result struct {
	Columns []string
	Masks   map[string]Mask
	// Any is true for rows where at least one column is flagged.
	Any Mask
}

// Rows returns the indices of rows flagged in any column.
func (r Result) Rows() []int {
	var out []int
	for i, v := range r.Any {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// Detector runs spike detection across a table.
type Detector struct {
	Options Options
	Watched map[string]bool
}

// NewDetector watches the given columns, or WatchedColumns when none are given.
func NewDetector(opt Options, watched ...string) *Detector {
	if len(watched) == 0 {
		watched = WatchedColumns
	}
	w := make(map[string]bool, len(watched))
	for _, c := range watched {
		w[c] = true
	}
	return &Detector{Options: opt, Watched: w}
}

// Table builds a mask for each listed column. Columns outside the watched
// set get an all-false mask.
func (d *Detector) Table(t *table.Table, cols []string) Result {
	res := Result{Columns: cols, Masks: make(map[string]Mask, len(cols)), Any: make(Mask, t.Len())}
	for _, name := range cols {
		vals := t.Values(name)
		var m Mask
		if d.Watched[name] && vals != nil {
			m = Detect(vals, d.Options)
		} else {
			m = make(Mask, t.Len())
		}
		res.Masks[name] = m
		for i, v := range m {
			if v {
				res.Any[i] = true
			}
		}
	}
	return res
}
