package exporting

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			"id":               "run-1",
			"modelName":        "tinyllama",
			"totalTime":        2.6,
			"generatedTokens":  float64(40),
			"tokensPerSecond":  20.0,
			"estimatedEnergyJ": 42.5,
			"cancelled":        false,
		},
		{
			"id":               "run-2",
			"modelName":        "tinyllama",
			"totalTime":        1.1,
			"generatedTokens":  float64(12),
			"tokensPerSecond":  10.9,
			"estimatedEnergyJ": nil,
			"cancelled":        true,
		},
	}
}

func TestRegistryHasAllFormats(t *testing.T) {
	for _, name := range []string{"jsonl", "csv", "parquet"} {
		f, ok := Get(name)
		require.True(t, ok, "format %s not registered", name)
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Extension())
	}
	assert.Len(t, Names(), 3)
}

func TestExtensionFallsBackToJSONL(t *testing.T) {
	assert.Equal(t, ".parquet", Extension("parquet"))
	assert.Equal(t, ".jsonl", Extension("unknown"))
}

func TestUnsupportedFormatRejected(t *testing.T) {
	_, err := NewExporter(filepath.Join(t.TempDir(), "out.tsv"), "tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	exp, err := NewExporter(path, "jsonl")
	require.NoError(t, err)

	require.NoError(t, exp.WriteAll(sampleRecords()))
	require.NoError(t, exp.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		lines = append(lines, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	assert.Equal(t, "run-1", lines[0]["id"])
	assert.InDelta(t, 2.6, lines[0]["totalTime"].(float64), 1e-9)

	// A withheld estimate survives as explicit null.
	v, present := lines[1]["estimatedEnergyJ"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestCSVHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	exp, err := NewExporter(path, "csv")
	require.NoError(t, err)

	require.NoError(t, exp.WriteAll(sampleRecords()))
	require.NoError(t, exp.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Contains(t, header, "id")
	assert.Contains(t, header, "tokensPerSecond")
	assert.IsIncreasing(t, header, "header columns should be sorted")

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	assert.Equal(t, "run-1", rows[1][col["id"]])
	assert.Equal(t, "false", rows[1][col["cancelled"]])
	assert.Equal(t, "true", rows[2][col["cancelled"]])
	// Nil values render as empty cells.
	assert.Equal(t, "", rows[2][col["estimatedEnergyJ"]])
}

func TestParquetWriteProducesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	exp, err := NewExporter(path, "parquet")
	require.NoError(t, err)

	require.NoError(t, exp.WriteAll(sampleRecords()))
	require.NoError(t, exp.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
