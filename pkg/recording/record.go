// Package recording merges engine timings and profiler metrics into
// immutable run records and persists them.
package recording

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"InferenceHarness/pkg/device"
	"InferenceHarness/pkg/inference"
)

// SchemaVersion identifies the persisted record encoding. Bump on any
// field change so offline tooling can dispatch on it.
const SchemaVersion = 1

// RunRecord is the self-contained, immutable description of one inference
// execution. JSON keys match the encoding the offline analysis pipeline
// ingests; durations are float seconds.
type RunRecord struct {
	SchemaVersion int       `json:"schemaVersion"`
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`

	PromptText      string `json:"promptText"`
	PromptLength    int    `json:"promptLength"`
	PromptWordCount int    `json:"promptWordCount"`
	Category        string `json:"category,omitempty"`

	PrefillTime       float64 `json:"prefillTime"`
	DecodeTime        float64 `json:"decodeTime"`
	TotalTime         float64 `json:"totalTime"`
	FirstTokenLatency float64 `json:"firstTokenLatency"`

	PromptTokens    int `json:"promptTokens"`
	GeneratedTokens int `json:"generatedTokens"`
	TotalTokens     int `json:"totalTokens"`

	TokensPerSecond        float64 `json:"tokensPerSecond"`
	PrefillTokensPerSecond float64 `json:"prefillTokensPerSecond"`
	DecodeTokensPerSecond  float64 `json:"decodeTokensPerSecond"`

	PeakMemoryMB    float64 `json:"peakMemoryMB"`
	AverageMemoryMB float64 `json:"averageMemoryMB"`

	// EstimatedEnergyJ is the battery-delta figure; absent (null) when
	// battery telemetry was unavailable or the device was charging. Never
	// coerced to zero: a missing estimate and a measured zero are distinct.
	EstimatedEnergyJ *float64 `json:"estimatedEnergyJ"`
	// CPUEnergyJ is the model-based figure, always present.
	CPUEnergyJ       float64  `json:"cpuEnergyJ"`
	AverageGPUPowerW *float64 `json:"averageGPUPowerW,omitempty"`

	ThermalState string `json:"thermalState"`

	OutputText   string `json:"outputText"`
	OutputLength int    `json:"outputLength"`

	Cancelled bool `json:"cancelled"`

	ModelName           string   `json:"modelName"`
	ModelSizeBytes      int64    `json:"modelSizeBytes"`
	DeviceModel         string   `json:"deviceModel"`
	OSVersion           string   `json:"osVersion"`
	BatteryLevelAtStart *float64 `json:"batteryLevelAtStart"`
}

// Provenance carries the run-invariant identity fields merged into every
// record.
type Provenance struct {
	ModelName      string
	ModelSizeBytes int64
	Device         device.Info
	Category       string
}

// Merge combines the engine's result with the profiler's metrics snapshot
// into one record. It is a pure merge: given a result carrying a metrics
// snapshot it cannot fail, and a record is only constructible from both
// halves: Merge returns nil if either is missing, so a run whose profiling
// failed is never silently recorded with holes.
func Merge(res *inference.Result, prov Provenance) *RunRecord {
	if res == nil || res.Metrics == nil {
		return nil
	}
	m := res.Metrics

	r := &RunRecord{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Timestamp:     res.StartedAt,

		PromptText:      res.PromptText,
		PromptLength:    len(res.PromptText),
		PromptWordCount: len(strings.Fields(res.PromptText)),
		Category:        prov.Category,

		PrefillTime:       res.PrefillTime.Seconds(),
		DecodeTime:        res.DecodeTime.Seconds(),
		TotalTime:         res.TotalTime.Seconds(),
		FirstTokenLatency: res.FirstTokenLatency.Seconds(),

		PromptTokens:    res.PromptTokens,
		GeneratedTokens: res.GeneratedTokens,
		TotalTokens:     res.PromptTokens + res.GeneratedTokens,

		PeakMemoryMB:    m.PeakMemoryMB,
		AverageMemoryMB: m.AverageMemoryMB,

		EstimatedEnergyJ: m.EstimatedEnergyJ,
		CPUEnergyJ:       m.CPUEnergyJ,
		AverageGPUPowerW: m.AverageGPUPowerW,

		ThermalState: m.ThermalState.String(),

		OutputText:   res.OutputText,
		OutputLength: len(res.OutputText),
		Cancelled:    res.Cancelled,

		ModelName:           prov.ModelName,
		ModelSizeBytes:      prov.ModelSizeBytes,
		DeviceModel:         prov.Device.DeviceModel,
		OSVersion:           prov.Device.OSVersion,
		BatteryLevelAtStart: m.BatteryLevelAtStart,
	}

	// Throughputs are undefined over zero-length phases and reported as 0,
	// never divide-by-zero.
	r.TokensPerSecond = safeRate(float64(res.GeneratedTokens), r.DecodeTime)
	r.PrefillTokensPerSecond = safeRate(float64(res.PromptTokens), r.PrefillTime)
	r.DecodeTokensPerSecond = r.TokensPerSecond

	return r
}

func safeRate(count, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return count / seconds
}

// Flatten converts a record to a flat key/value map for the exporters.
func (r *RunRecord) Flatten() map[string]interface{} {
	data, _ := json.Marshal(r)
	var flat map[string]interface{}
	_ = json.Unmarshal(data, &flat)
	if ts, ok := flat["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			flat["timestamp"] = float64(t.UnixNano()) / 1e9
		}
	}
	return flat
}
