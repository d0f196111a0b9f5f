package config

import (
	"github.com/spf13/cobra"
)

// AddModelFlags adds model selection flags to a command.
func (c *Config) AddModelFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.ModelDir, "model-dir", c.ModelDir, "Model artifact directory")
	flags.StringVarP(&c.Model, "model", "m", c.Model, "Model identifier")
	flags.IntVar(&c.MaxTokens, "max-tokens", c.MaxTokens, "Maximum tokens to generate")
	flags.DurationVar(&c.Timeout, "timeout", c.Timeout, "Per-run timeout (0 = none)")
}

// AddSamplingFlags adds profiler sampling flags to a command.
func (c *Config) AddSamplingFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.DurationVar(&c.Interval, "interval", c.Interval, "Resource sampling interval")
	flags.BoolVar(&c.EnableGPU, "gpu", c.EnableGPU, "Sample GPU power through NVML")
	flags.Float64Var(&c.BatteryCapacityJ, "battery-capacity-j", c.BatteryCapacityJ, "Battery capacity in joules")
	flags.Float64Var(&c.AvgCPUPowerW, "cpu-power-w", c.AvgCPUPowerW, "Sustained CPU power draw in watts")
}

// AddStoreFlags adds record storage flags to a command.
func (c *Config) AddStoreFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.DataDir, "data-dir", c.DataDir, "Harness data directory")
	flags.StringVar(&c.StoreKind, "store", c.StoreKind, "Record store (sqlite, json)")
}

// AddOutputFlags adds export output flags to a command.
func (c *Config) AddOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&c.OutputDir, "output-dir", "o", c.OutputDir, "Output directory")
	flags.StringVarP(&c.OutputFormat, "format", "f", c.OutputFormat, "Output format (jsonl, csv, parquet)")
	flags.StringVar(&c.OutputName, "output", c.OutputName, "Output filename (auto-generated if empty)")
}
