package graphing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InferenceHarness/pkg/recording"
)

func reportRecords() []*recording.RunRecord {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	energy := 30.0
	return []*recording.RunRecord{
		{
			ID: "b", Timestamp: base.Add(time.Minute),
			PrefillTime: 0.4, DecodeTime: 1.8, TotalTime: 2.3,
			TokensPerSecond: 22, PeakMemoryMB: 520,
			EstimatedEnergyJ: &energy, CPUEnergyJ: 15,
		},
		{
			ID: "a", Timestamp: base,
			PrefillTime: 0.5, DecodeTime: 2.0, TotalTime: 2.6,
			TokensPerSecond: 20, PeakMemoryMB: 512,
			CPUEnergyJ: 18, // no battery estimate on this run
		},
		{
			ID: "c", Timestamp: base.Add(2 * time.Minute),
			PrefillTime: 0.3, DecodeTime: 1.5, TotalTime: 1.9,
			TokensPerSecond: 25, PeakMemoryMB: 530,
			CPUEnergyJ: 12,
		},
	}
}

func TestGeneratorRequiresOutputPath(t *testing.T) {
	_, err := NewGenerator("")
	assert.Error(t, err)
}

func TestGenerateRequiresTwoRecords(t *testing.T) {
	gen, err := NewGenerator(filepath.Join(t.TempDir(), "report.html"))
	require.NoError(t, err)

	err = gen.Generate(reportRecords()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2")
}

func TestGenerateWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.html")
	gen, err := NewGenerator(path)
	require.NoError(t, err)

	require.NoError(t, gen.Generate(reportRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "echarts")
}
