package cmd

import (
	"fmt"

	"github.com/KaramelBytes/pairscope/internal/budget"
	"github.com/KaramelBytes/pairscope/internal/report"
	"github.com/KaramelBytes/pairscope/internal/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	metFile     string
	metBudgetNs int64
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print processing-time statistics and per-row budget pass fractions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		f := cmd.Flags()
		path := c.MetricsFile
		if f.Changed("file") {
			path = metFile
		}
		budgetNs := c.BudgetNs
		if f.Changed("budget-ns") {
			budgetNs = metBudgetNs
		}
		if budgetNs <= 0 {
			return fmt.Errorf("invalid --budget-ns: %d", budgetNs)
		}
		t, err := table.Load(path, table.DefaultOptions())
		if err != nil {
			return err
		}
		logger.Debug("loaded metrics", zap.String("file", path), zap.Int("rows", t.Len()), zap.Int64("budget_ns", budgetNs))
		rep, err := budget.Evaluate(t, float64(budgetNs))
		if err != nil {
			return err
		}
		report.Budget(cmd.OutOrStdout(), rep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().StringVarP(&metFile, "file", "f", "pair_metrics.csv", "path to pair_metrics.csv")
	metricsCmd.Flags().Int64Var(&metBudgetNs, "budget-ns", budget.DefaultBudgetNs, "per-row processing budget in nanoseconds")
}
