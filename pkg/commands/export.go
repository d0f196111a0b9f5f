package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/exporting"
	"InferenceHarness/pkg/recording"
)

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored run records",
		Long: `Flatten stored run records into a tabular file for offline analysis.

Example:
  infharness export -f parquet -o ./out
  infharness export -f csv --output runs.csv`,
		RunE: runExport,
	}

	Cfg.AddStoreFlags(cmd)
	Cfg.AddOutputFlags(cmd)

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list run records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no run records to export")
	}

	path := Cfg.OutputName
	if path == "" {
		path = Cfg.GenerateOutputPath("runs", exporting.Extension(Cfg.OutputFormat))
	}

	exporter, err := exporting.NewExporter(path, Cfg.OutputFormat)
	if err != nil {
		return err
	}

	flattened := make([]exporting.Record, len(records))
	for i, r := range records {
		flattened[i] = r.Flatten()
	}
	if err := exporter.WriteAll(flattened); err != nil {
		exporter.Close()
		return err
	}
	if err := exporter.Close(); err != nil {
		return err
	}

	log.Printf("exported %d records to %s", len(records), exporter.Path())
	return nil
}

// openStore opens the configured record store for the read-side commands.
func openStore() (recording.Store, error) {
	if Cfg.StoreKind == "json" {
		return recording.NewFileStore(Cfg.RunsDir())
	}
	return recording.OpenSQLiteStore(Cfg.DBPath())
}
