package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	InputFile        string `mapstructure:"input_file" yaml:"input_file"`
	MetricsFile      string `mapstructure:"metrics_file" yaml:"metrics_file"`
	OutPrefix        string `mapstructure:"out_prefix" yaml:"out_prefix"`
	ClassifiedOutput string `mapstructure:"classified_output" yaml:"classified_output"`

	// Spike detection
	ZThreshold  float64 `mapstructure:"z_threshold" yaml:"z_threshold"`
	Percentile  float64 `mapstructure:"percentile" yaml:"percentile"`
	Window      int     `mapstructure:"window" yaml:"window"`
	RollingMult float64 `mapstructure:"rolling_mult" yaml:"rolling_mult"`

	Top      int   `mapstructure:"top" yaml:"top"`
	BudgetNs int64 `mapstructure:"budget_ns" yaml:"budget_ns"`
	PlotDPI  int   `mapstructure:"plot_dpi" yaml:"plot_dpi"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

var defaults = map[string]any{
	"input_file":        filepath.Join("x64", "Release", "pair_metrics.csv"),
	"metrics_file":      "pair_metrics.csv",
	"out_prefix":        "pair_metrics",
	"classified_output": "pair_metrics_classified.csv",
	"z_threshold":       3.0,
	"percentile":        0.99,
	"window":            31,
	"rolling_mult":      5.0,
	"top":               5,
	"budget_ns":         1_000_000,
	"plot_dpi":          150,
	"log_level":         "warn",
}

// Default returns the built-in configuration without reading files or env.
func Default() *Global {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pairscope", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pairscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (PAIRSCOPE_*) > config file > defaults. Command flags are
// applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PAIRSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// SetKey validates and assigns one configuration value by its file key.
func (c *Global) SetKey(key, val string) error {
	switch key {
	case "input_file":
		c.InputFile = val
	case "metrics_file":
		c.MetricsFile = val
	case "out_prefix":
		if val == "" {
			return fmt.Errorf("out_prefix must not be empty")
		}
		c.OutPrefix = val
	case "classified_output":
		c.ClassifiedOutput = val
	case "z_threshold":
		f, err := parsePositive(key, val)
		if err != nil {
			return err
		}
		c.ZThreshold = f
	case "percentile":
		f, err := parseFloat(key, val)
		if err != nil {
			return err
		}
		if f <= 0 || f >= 1 {
			return fmt.Errorf("invalid percentile: %v (want 0 < p < 1)", val)
		}
		c.Percentile = f
	case "window":
		i, err := parseInt(key, val)
		if err != nil {
			return err
		}
		if i < 1 {
			return fmt.Errorf("invalid window: %d (want >= 1)", i)
		}
		c.Window = int(i)
	case "rolling_mult":
		f, err := parsePositive(key, val)
		if err != nil {
			return err
		}
		c.RollingMult = f
	case "top":
		i, err := parseInt(key, val)
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("invalid top: %d", i)
		}
		c.Top = int(i)
	case "budget_ns":
		i, err := parseInt(key, val)
		if err != nil {
			return err
		}
		if i <= 0 {
			return fmt.Errorf("invalid budget_ns: %d", i)
		}
		c.BudgetNs = i
	case "plot_dpi":
		i, err := parseInt(key, val)
		if err != nil {
			return err
		}
		if i <= 0 {
			return fmt.Errorf("invalid plot_dpi: %d", i)
		}
		c.PlotDPI = int(i)
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
