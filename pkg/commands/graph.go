package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/graphing"
)

// NewGraphCmd creates the graph subcommand.
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate an HTML report from stored run records",
		Long: `Render stored run records into a single HTML page of charts: latency over
time, prefill versus decode shape, throughput distribution, energy, and
memory.

Example:
  infharness graph -o ./reports
  infharness graph --output report.html`,
		RunE: runGraph,
	}

	Cfg.AddStoreFlags(cmd)
	cmd.Flags().StringVarP(&Cfg.OutputDir, "output-dir", "o", Cfg.OutputDir, "Output directory")
	cmd.Flags().StringVar(&Cfg.OutputName, "output", Cfg.OutputName, "Output filename (auto-generated if empty)")

	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list run records: %w", err)
	}

	path := Cfg.OutputName
	if path == "" {
		path = Cfg.GenerateOutputPath("report", ".html")
	}

	gen, err := graphing.NewGenerator(path)
	if err != nil {
		return err
	}
	if err := gen.Generate(records); err != nil {
		return err
	}

	log.Printf("wrote report for %d records to %s", len(records), path)
	return nil
}
