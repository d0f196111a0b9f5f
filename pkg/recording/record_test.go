package recording

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InferenceHarness/pkg/device"
	"InferenceHarness/pkg/inference"
	"InferenceHarness/pkg/profiling"
	"InferenceHarness/pkg/sampling"
)

func sampleResult() *inference.Result {
	energy := 42.5
	level := 0.8
	return &inference.Result{
		StartedAt:         time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		PromptText:        "explain thermal throttling",
		PromptTokens:      3,
		PrefillTime:       500 * time.Millisecond,
		DecodeTime:        2 * time.Second,
		TotalTime:         2600 * time.Millisecond,
		FirstTokenLatency: 120 * time.Millisecond,
		GeneratedTokens:   40,
		OutputText:        "throttling reduces clock speed under heat",
		Metrics: &profiling.Metrics{
			PeakMemoryMB:        512,
			AverageMemoryMB:     400,
			SampleCount:         26,
			EstimatedEnergyJ:    &energy,
			CPUEnergyJ:          18.2,
			BatteryLevelAtStart: &level,
			ThermalState:        sampling.ThermalFair,
		},
	}
}

func sampleProvenance() Provenance {
	return Provenance{
		ModelName:      "tinyllama",
		ModelSizeBytes: 1 << 30,
		Device: device.Info{
			DeviceModel: "Pixel 9",
			OSVersion:   "6.6.0",
		},
		Category: "reasoning",
	}
}

func TestMergeComputesDerivedFields(t *testing.T) {
	r := Merge(sampleResult(), sampleProvenance())
	require.NotNil(t, r)

	assert.Equal(t, SchemaVersion, r.SchemaVersion)
	assert.NotEmpty(t, r.ID)

	assert.Equal(t, 43, r.TotalTokens)
	assert.InDelta(t, 20, r.TokensPerSecond, 1e-9) // 40 tokens over 2s
	assert.InDelta(t, 6, r.PrefillTokensPerSecond, 1e-9)
	assert.Equal(t, r.TokensPerSecond, r.DecodeTokensPerSecond)

	assert.InDelta(t, 0.5, r.PrefillTime, 1e-9)
	assert.InDelta(t, 2.0, r.DecodeTime, 1e-9)
	assert.InDelta(t, 2.6, r.TotalTime, 1e-9)
	assert.InDelta(t, 0.12, r.FirstTokenLatency, 1e-9)

	assert.Equal(t, len("explain thermal throttling"), r.PromptLength)
	assert.Equal(t, 3, r.PromptWordCount)
	assert.Equal(t, len(r.OutputText), r.OutputLength)

	require.NotNil(t, r.EstimatedEnergyJ)
	assert.InDelta(t, 42.5, *r.EstimatedEnergyJ, 1e-9)
	assert.InDelta(t, 18.2, r.CPUEnergyJ, 1e-9)
	assert.Equal(t, "fair", r.ThermalState)

	assert.Equal(t, "tinyllama", r.ModelName)
	assert.Equal(t, "Pixel 9", r.DeviceModel)
	assert.Equal(t, "reasoning", r.Category)
}

func TestMergeRequiresBothHalves(t *testing.T) {
	assert.Nil(t, Merge(nil, sampleProvenance()))

	res := sampleResult()
	res.Metrics = nil
	assert.Nil(t, Merge(res, sampleProvenance()))
}

func TestMergeZeroDurationsYieldZeroRates(t *testing.T) {
	res := sampleResult()
	res.PrefillTime = 0
	res.DecodeTime = 0
	res.GeneratedTokens = 0

	r := Merge(res, sampleProvenance())
	require.NotNil(t, r)
	assert.Zero(t, r.TokensPerSecond)
	assert.Zero(t, r.PrefillTokensPerSecond)
}

func TestMergeUniqueIDs(t *testing.T) {
	a := Merge(sampleResult(), sampleProvenance())
	b := Merge(sampleResult(), sampleProvenance())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJSONKeysMatchAnalysisEncoding(t *testing.T) {
	r := Merge(sampleResult(), sampleProvenance())
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{
		"schemaVersion", "prefillTime", "decodeTime", "totalTime",
		"firstTokenLatency", "tokensPerSecond", "promptTokens",
		"generatedTokens", "totalTokens", "peakMemoryMB",
		"estimatedEnergyJ", "cpuEnergyJ", "thermalState", "modelName",
	} {
		assert.Contains(t, m, key)
	}

	// Durations encode as float seconds, not strings.
	assert.InDelta(t, 2.6, m["totalTime"].(float64), 1e-9)
}

func TestMissingEnergyEncodesAsNull(t *testing.T) {
	res := sampleResult()
	res.Metrics.EstimatedEnergyJ = nil

	data, err := json.Marshal(Merge(res, sampleProvenance()))
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	v, present := m["estimatedEnergyJ"]
	assert.True(t, present, "a withheld estimate must be explicit null, not omitted")
	assert.Nil(t, v)
}

func TestFlattenTimestampToEpochSeconds(t *testing.T) {
	r := Merge(sampleResult(), sampleProvenance())
	flat := r.Flatten()

	ts, ok := flat["timestamp"].(float64)
	require.True(t, ok, "timestamp should flatten to a number")
	assert.InDelta(t, float64(r.Timestamp.UnixNano())/1e9, ts, 1e-6)
	assert.Equal(t, r.PromptText, flat["promptText"])
}
