package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/pairscope/internal/report"
	"github.com/KaramelBytes/pairscope/internal/spikes"
	"github.com/KaramelBytes/pairscope/internal/stats"
	"github.com/KaramelBytes/pairscope/internal/table"
	"github.com/KaramelBytes/pairscope/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	anaFile        string
	anaTimeCol     string
	anaOutPrefix   string
	anaZThreshold  float64
	anaPercentile  float64
	anaWindow      int
	anaRollingMult float64
)

// topSpikeRows is how many spike rows the console summary lists.
const topSpikeRows = 10

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Detect latency spikes, write spike rows and a time-series plot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		f := cmd.Flags()
		path := c.InputFile
		if f.Changed("file") {
			path = anaFile
		}
		prefix := c.OutPrefix
		if f.Changed("out-prefix") {
			prefix = anaOutPrefix
		}
		opt := spikes.Options{ZThreshold: c.ZThreshold, Percentile: c.Percentile, Window: c.Window, RollingMult: c.RollingMult}
		if f.Changed("z-threshold") {
			opt.ZThreshold = anaZThreshold
		}
		if f.Changed("percentile") {
			if anaPercentile <= 0 || anaPercentile >= 1 {
				return fmt.Errorf("invalid --percentile: %v (want 0 < p < 1)", anaPercentile)
			}
			opt.Percentile = anaPercentile
		}
		if f.Changed("window") {
			opt.Window = anaWindow
		}
		if f.Changed("rolling-mult") {
			opt.RollingMult = anaRollingMult
		}
		plotOpt := report.DefaultPlotOptions()
		if c.PlotDPI > 0 {
			plotOpt.DPI = c.PlotDPI
		}

		t, err := table.Load(path, table.DefaultOptions())
		if err != nil {
			return err
		}
		logger.Debug("loaded metrics", zap.String("file", path), zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns())))
		if anaTimeCol != "" {
			if !t.SetTimeIndex(anaTimeCol) {
				logger.Warn("time column not usable as index, keeping row order", zap.String("column", anaTimeCol))
			}
		}
		return analyzeTable(cmd.OutOrStdout(), t, prefix, opt, plotOpt)
	},
}

func analyzeTable(w io.Writer, t *table.Table, prefix string, opt spikes.Options, plotOpt report.PlotOptions) error {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return table.ErrNoNumericColumns
	}

	summary := stats.Summarize(t, numeric, stats.PercentileColumns)
	res := spikes.NewDetector(opt).Table(t, numeric)
	for _, name := range numeric {
		if n := res.Masks[name].Count(); n > 0 {
			logger.Info("spikes detected", zap.String("column", name), zap.Int("rows", n))
		}
	}
	rows := res.Rows()

	spikesOut := utils.OutputPath(prefix, "spikes.csv")
	if err := report.WriteSpikes(spikesOut, t, rows); err != nil {
		return err
	}
	plotOut := utils.OutputPath(prefix, "analysis.png")
	if err := report.PlotSeries(plotOut, t, numeric, res.Masks, plotOpt); err != nil {
		return err
	}

	report.TimingSummary(w, t.Present(report.TimingColumns...), summary)
	if t.Has("queue_latency_ns") && len(rows) > 0 {
		top := report.TopRows(rows, t.Values("queue_latency_ns"), topSpikeRows)
		fmt.Fprintln(w, "\nTop spikes (by queue_latency_ns):")
		if err := report.PrintRows(w, report.Columns(t, report.SpikeColumns(t)...), top); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Spike rows: %d -> saved to %s\n", len(rows), spikesOut)
	fmt.Fprintf(w, "Plot: %s\n", plotOut)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	d := spikes.DefaultOptions()
	analyzeCmd.Flags().StringVarP(&anaFile, "file", "f", "x64/Release/pair_metrics.csv", "path to pair_metrics.csv")
	analyzeCmd.Flags().StringVar(&anaTimeCol, "time-col", "", "optional time column to use as the row index")
	analyzeCmd.Flags().StringVar(&anaOutPrefix, "out-prefix", "pair_metrics", "output filename prefix")
	analyzeCmd.Flags().Float64Var(&anaZThreshold, "z-threshold", d.ZThreshold, "global |z| threshold")
	analyzeCmd.Flags().Float64Var(&anaPercentile, "percentile", d.Percentile, "global percentile threshold (0-1)")
	analyzeCmd.Flags().IntVar(&anaWindow, "window", d.Window, "centered rolling window in rows (min 3)")
	analyzeCmd.Flags().Float64Var(&anaRollingMult, "rolling-mult", d.RollingMult, "local spike threshold as a multiple of rolling MAD")
}
