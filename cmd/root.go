package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/pairscope/internal/config"
	"github.com/KaramelBytes/pairscope/internal/logging"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Diagnostic logger for the current invocation; replaced in PersistentPreRunE.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "pairscope",
	Short: "pairscope: latency spike analysis for pair pipeline metrics",
	Long: `pairscope reads the pair_metrics.csv log written by the pair pipeline and
summarizes timing columns, flags latency spikes, classifies their cause and
writes derived CSV and PNG artifacts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(effectiveConfig().LogLevel, debug)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pairscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = cfgpkg.Default()
		return
	}
	cfg = c
}

func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
