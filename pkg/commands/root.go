// Package commands provides CLI command implementations.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/config"
)

// Cfg is the shared configuration instance.
var Cfg = config.New()

var cfgFile string

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "infharness",
		Short: "Instrumented measurement harness for on-device LLM inference",
		Long: `InferenceHarness drives a local model through prompts while a concurrent
profiler samples memory, CPU, battery, and thermal telemetry, producing one
structured run record per inference.

Commands:
  run        Run one instrumented inference
  batch      Run every prompt in a file
  snapshot   Capture a device/telemetry snapshot
  export     Export stored run records (jsonl, csv, parquet)
  graph      Generate an HTML report from stored run records`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				return Cfg.LoadFile(cfgFile)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (its settings override flags)")

	root.AddCommand(
		NewRunCmd(),
		NewBatchCmd(),
		NewSnapshotCmd(),
		NewExportCmd(),
		NewGraphCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
