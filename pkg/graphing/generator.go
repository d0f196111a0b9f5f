// Package graphing renders an HTML report visualizing recorded runs:
// latency series, prefill-vs-decode shape, throughput distribution, energy,
// and memory.
package graphing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/components"

	"InferenceHarness/pkg/recording"
)

// Generator builds one HTML page of charts from run records.
type Generator struct {
	outputPath string
}

// NewGenerator creates a generator writing to outputPath.
func NewGenerator(outputPath string) (*Generator, error) {
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return &Generator{outputPath: outputPath}, nil
}

// Generate renders the report. At least two records are required to draw
// meaningful series.
func (g *Generator) Generate(records []*recording.RunRecord) error {
	if len(records) < 2 {
		return fmt.Errorf("need at least 2 records to generate graphs, got %d", len(records))
	}

	sorted := append([]*recording.RunRecord(nil), records...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	page := components.NewPage()
	page.PageTitle = "Inference Harness Report"
	page.AddCharts(
		createLatencyChart(sorted),
		createPrefillDecodeScatter(sorted),
		createThroughputHistogram(sorted),
		createEnergyChart(sorted),
		createMemoryChart(sorted),
	)

	if dir := filepath.Dir(g.outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(g.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
