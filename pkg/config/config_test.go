package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultStore, cfg.StoreKind)
	assert.Equal(t, DefaultBatteryCapacityJ, cfg.BatteryCapacityJ)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sub-millisecond interval", func(c *Config) { c.Interval = 100 * time.Microsecond }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"unknown store", func(c *Config) { c.StoreKind = "etcd" }},
		{"zero battery capacity", func(c *Config) { c.BatteryCapacityJ = 0 }},
		{"negative cpu power", func(c *Config) { c.AvgCPUPowerW = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	yaml := `
model: tinyllama
max_tokens: 32
interval: 250ms
store: json
battery_capacity_j: 150000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg := New()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "tinyllama", cfg.Model)
	assert.Equal(t, 32, cfg.MaxTokens)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "json", cfg.StoreKind)
	assert.Equal(t, 150000.0, cfg.BatteryCapacityJ)

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultAvgCPUPowerW, cfg.AvgCPUPowerW)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := New()
	assert.Error(t, cfg.LoadFile("/nonexistent/harness.yaml"))
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))
	assert.Error(t, New().LoadFile(path))
}

func TestDataPaths(t *testing.T) {
	cfg := New()
	cfg.DataDir = "/tmp/ih"
	assert.Equal(t, "/tmp/ih/runs.db", cfg.DBPath())
	assert.Equal(t, "/tmp/ih/runs", cfg.RunsDir())
}

func TestGenerateOutputPath(t *testing.T) {
	cfg := New()
	cfg.OutputDir = "/tmp/out"
	path := cfg.GenerateOutputPath("runs", ".jsonl")
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "/tmp/out", filepath.Dir(path))
	assert.Equal(t, ".jsonl", filepath.Ext(path))
}
