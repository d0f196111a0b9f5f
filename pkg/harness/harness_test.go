package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InferenceHarness/pkg/config"
	"InferenceHarness/pkg/inference"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.Interval = 5 * time.Millisecond
	cfg.MaxTokens = 10
	cfg.StubPrefillDelay = time.Millisecond
	cfg.StubDecodeDelay = 2 * time.Millisecond

	cfg.ModelDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ModelDir, "tiny.gguf"), []byte("weights"), 0o644))
	cfg.Model = "tiny"
	return cfg
}

func newTestHarness(t *testing.T, cfg *config.Config) *Harness {
	t.Helper()
	h, err := New(cfg, inference.StubFactory(cfg.StubPrefillDelay, cfg.StubDecodeDelay, 0))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestRunInferencePersistsRecord(t *testing.T) {
	for _, kind := range []string{"sqlite", "json"} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.StoreKind = kind
			h := newTestHarness(t, cfg)
			require.NoError(t, h.LoadModel(""))

			record, err := h.RunInference(context.Background(), "measure this prompt", "smoke")
			require.NoError(t, err)
			require.NotNil(t, record)

			assert.Equal(t, "tiny", record.ModelName)
			assert.Equal(t, "smoke", record.Category)
			assert.Equal(t, 3, record.PromptTokens)
			assert.Equal(t, 10, record.GeneratedTokens)
			assert.Greater(t, record.TotalTime, 0.0)
			assert.Greater(t, record.TokensPerSecond, 0.0)
			assert.NotEmpty(t, record.ThermalState)

			got, err := h.Store().Get(record.ID)
			require.NoError(t, err)
			assert.Equal(t, record.PromptText, got.PromptText)
		})
	}
}

func TestRunInferenceTimeoutRecordsPartial(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxTokens = 1000
	cfg.StubDecodeDelay = 5 * time.Millisecond
	cfg.Timeout = 60 * time.Millisecond
	h := newTestHarness(t, cfg)
	require.NoError(t, h.LoadModel(""))

	record, err := h.RunInference(context.Background(), "never finishes", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, inference.ErrCancelled))

	require.NotNil(t, record, "a timed-out run still yields its partial record")
	assert.True(t, record.Cancelled)
	assert.Greater(t, record.GeneratedTokens, 0)
	assert.Less(t, record.GeneratedTokens, 1000)

	// The partial record was persisted like any other.
	_, err = h.Store().Get(record.ID)
	require.NoError(t, err)
}

func TestLoadModelFallsBackToConfigured(t *testing.T) {
	cfg := testConfig(t)
	h := newTestHarness(t, cfg)

	require.NoError(t, h.LoadModel(""))
	require.NoError(t, h.LoadModel("tiny"))

	cfg2 := testConfig(t)
	cfg2.Model = ""
	h2 := newTestHarness(t, cfg2)
	err := h2.LoadModel("")
	require.Error(t, err)
	assert.ErrorIs(t, err, inference.ErrModelNotFound)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxTokens = -1
	_, err := New(cfg, inference.StubFactory(0, 0, 0))
	require.Error(t, err)
}

func TestSuccessiveRunsReuseEngine(t *testing.T) {
	cfg := testConfig(t)
	h := newTestHarness(t, cfg)
	require.NoError(t, h.LoadModel(""))

	for i := 0; i < 3; i++ {
		_, err := h.RunInference(context.Background(), "repeatable", "")
		require.NoError(t, err)
	}

	records, err := h.Store().List()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
