package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/pairscope/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set pairscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "input_file: %s\n", c.InputFile)
		fmt.Fprintf(w, "metrics_file: %s\n", c.MetricsFile)
		fmt.Fprintf(w, "out_prefix: %s\n", c.OutPrefix)
		fmt.Fprintf(w, "classified_output: %s\n", c.ClassifiedOutput)
		fmt.Fprintf(w, "z_threshold: %.3f\n", c.ZThreshold)
		fmt.Fprintf(w, "percentile: %.3f\n", c.Percentile)
		fmt.Fprintf(w, "window: %d\n", c.Window)
		fmt.Fprintf(w, "rolling_mult: %.3f\n", c.RollingMult)
		fmt.Fprintf(w, "top: %d\n", c.Top)
		fmt.Fprintf(w, "budget_ns: %d\n", c.BudgetNs)
		fmt.Fprintf(w, "plot_dpi: %d\n", c.PlotDPI)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.SetKey(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
