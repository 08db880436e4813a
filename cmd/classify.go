package cmd

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/pairscope/internal/classify"
	"github.com/KaramelBytes/pairscope/internal/report"
	"github.com/KaramelBytes/pairscope/internal/table"
	"github.com/KaramelBytes/pairscope/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	clsFile   string
	clsTop    int
	clsOutput string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify rows as queue-driven, processing-driven or idle-waiting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		f := cmd.Flags()
		path := c.InputFile
		if f.Changed("file") {
			path = clsFile
		}
		top := c.Top
		if f.Changed("top") {
			top = clsTop
		}
		if top < 0 {
			return fmt.Errorf("invalid --top: %d", top)
		}
		out := c.ClassifiedOutput
		if f.Changed("output") {
			out = clsOutput
		}

		w := cmd.OutOrStdout()
		ok, err := utils.FileExists(path)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		if !ok {
			fmt.Fprintln(w, "File not found:", path)
			return nil
		}
		t, err := table.Load(path, table.Options{Coerce: table.CoerceZero})
		if err != nil {
			return err
		}
		logger.Debug("loaded metrics", zap.String("file", path), zap.Int("rows", t.Len()))
		res, err := classify.Classify(t)
		if err != nil {
			return err
		}
		logger.Info("classified rows",
			zap.Int("queue_runs", res.Runs.Count),
			zap.Int("max_run", res.Runs.MaxLen),
			zap.Int64("period_ns", res.PeriodNs),
		)
		if err := printClassification(w, t, res, top); err != nil {
			return err
		}
		if err := report.WriteTable(out, t); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nClassified rows saved to %s\n", out)
		return nil
	},
}

func printClassification(w io.Writer, t *table.Table, res classify.Result, top int) error {
	report.Thresholds(w, res.Thresholds)
	fmt.Fprintln(w)
	if err := report.LabelCounts(w, res.Counts()); err != nil {
		return err
	}
	fmt.Fprintln(w)
	report.RunSummary(w, res)

	for _, l := range []classify.Label{classify.QueueDriven, classify.ProcessingDriven, classify.IdleWaiting} {
		rows := res.Rows(l)
		if len(rows) == 0 {
			fmt.Fprintf(w, "\nNo examples for %s\n", l)
			continue
		}
		var key *table.Column
		switch l {
		case classify.QueueDriven:
			key = t.Column("queue_latency_ns")
		case classify.ProcessingDriven:
			key = report.MaxColumn("maxproc", t.Column("proc0_ns"), t.Column("proc1_ns"))
		default:
			key = t.Column("inter_output_delta_ns")
		}
		picked := report.TopRows(rows, key.Values, top)
		fmt.Fprintf(w, "\nTop %d examples for %s (showing seq, gen_ts_ns, pop_ts_ns, proc_start_ns, %s):\n", top, l, key.Name)
		cols := append(report.Columns(t, "seq", "gen_ts_ns", "pop_ts_ns", "proc_start_ns"), key)
		if err := report.PrintRows(w, cols, picked); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVarP(&clsFile, "file", "f", "x64/Release/pair_metrics.csv", "path to pair_metrics.csv")
	classifyCmd.Flags().IntVar(&clsTop, "top", 5, "examples to show per class")
	classifyCmd.Flags().StringVarP(&clsOutput, "output", "o", "pair_metrics_classified.csv", "path for the classified CSV")
}
