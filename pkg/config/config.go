// Package config provides configuration management for the harness.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all harness configuration options.
type Config struct {
	// Model settings
	ModelDir  string        `yaml:"model_dir"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`

	// Sampling settings
	Interval  time.Duration `yaml:"interval"`
	EnableGPU bool          `yaml:"gpu"`

	// Power model
	BatteryCapacityJ float64 `yaml:"battery_capacity_j"`
	AvgCPUPowerW     float64 `yaml:"avg_cpu_power_w"`

	// Stub backend timing (used until a native backend is linked in)
	StubPrefillDelay time.Duration `yaml:"stub_prefill_delay"`
	StubDecodeDelay  time.Duration `yaml:"stub_decode_delay"`

	// Storage settings
	DataDir   string `yaml:"data_dir"`
	StoreKind string `yaml:"store"` // sqlite or json

	// Export settings
	OutputDir    string `yaml:"output_dir"`
	OutputFormat string `yaml:"output_format"`
	OutputName   string `yaml:"output_name"`
}

// Default configuration values.
const (
	DefaultInterval  = 100 * time.Millisecond
	DefaultMaxTokens = 128
	DefaultFormat    = "jsonl"
	DefaultStore     = "sqlite"

	// Default power model: a 4685 mAh pack at 3.7 V and a typical mobile
	// SoC sustained draw.
	DefaultBatteryCapacityJ float64 = 224_640
	DefaultAvgCPUPowerW     = 8.5
)

// New creates a Config with default values.
func New() *Config {
	dataDir := ".infharness"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".infharness")
	}
	return &Config{
		MaxTokens:        DefaultMaxTokens,
		Interval:         DefaultInterval,
		BatteryCapacityJ: DefaultBatteryCapacityJ,
		AvgCPUPowerW:     DefaultAvgCPUPowerW,
		StubPrefillDelay: 2 * time.Millisecond,
		StubDecodeDelay:  20 * time.Millisecond,
		DataDir:          dataDir,
		StoreKind:        DefaultStore,
		OutputDir:        ".",
		OutputFormat:     DefaultFormat,
	}
}

// LoadFile merges settings from a YAML file over the current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval < time.Millisecond {
		return fmt.Errorf("interval must be at least 1ms, got %v", c.Interval)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max-tokens must be positive, got %d", c.MaxTokens)
	}
	if c.StoreKind != "sqlite" && c.StoreKind != "json" {
		return fmt.Errorf("invalid store kind: %s (valid: sqlite, json)", c.StoreKind)
	}
	if c.BatteryCapacityJ <= 0 {
		return fmt.Errorf("battery capacity must be positive, got %v", c.BatteryCapacityJ)
	}
	if c.AvgCPUPowerW <= 0 {
		return fmt.Errorf("cpu power must be positive, got %v", c.AvgCPUPowerW)
	}
	return nil
}

// DBPath returns the sqlite database location under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// RunsDir returns the per-run JSON document directory.
func (c *Config) RunsDir() string {
	return filepath.Join(c.DataDir, "runs")
}

// GenerateOutputPath creates an auto-generated export path.
func (c *Config) GenerateOutputPath(prefix, ext string) string {
	timestamp := time.Now().Format("20060102-150405")
	return filepath.Join(c.OutputDir, fmt.Sprintf("%s-%s%s", prefix, timestamp, ext))
}
