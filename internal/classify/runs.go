package classify

// Run is a maximal block of consecutive rows sharing a label.
// Start and End are inclusive row indices.
type Run struct {
	Start int
	End   int
	Len   int
}

// RunStats summarizes the runs of one label.
type RunStats struct {
	Count  int
	MaxLen int
	AvgLen float64
	Runs   []Run
}

// Runs scans labels in row order and merges consecutive occurrences of want.
func Runs(labels []Label, want Label) RunStats {
	var runs []Run
	start := -1
	for i, l := range labels {
		if l == want {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, End: i - 1, Len: i - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(labels) - 1, Len: len(labels) - start})
	}

	rs := RunStats{Count: len(runs), Runs: runs}
	total := 0
	for _, r := range runs {
		total += r.Len
		if r.Len > rs.MaxLen {
			rs.MaxLen = r.Len
		}
	}
	if len(runs) > 0 {
		rs.AvgLen = float64(total) / float64(len(runs))
	}
	return rs
}
