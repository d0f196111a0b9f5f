package profiling

import (
	"time"

	"InferenceHarness/pkg/sampling"
)

// Sample is one timestamped resident-memory reading. Samples are owned by
// the active profiling session: the buffer is append-only while sampling and
// cleared when a new session starts.
type Sample struct {
	Timestamp time.Time
	MemoryMB  float64
}

// Metrics is the aggregate of one profiling session. It is produced at Stop,
// consumed immediately by the run recorder, and never persisted standalone.
type Metrics struct {
	StartTime time.Time
	EndTime   time.Time

	PeakMemoryMB    float64
	AverageMemoryMB float64
	SampleCount     int

	// EstimatedEnergyJ is the battery-delta estimate, nil when battery
	// telemetry was unavailable or the device was charging.
	EstimatedEnergyJ *float64
	// CPUEnergyJ is the model-based estimate, always present.
	CPUEnergyJ          float64
	BatteryDropFraction float64
	BatteryLevelAtStart *float64

	// AverageGPUPowerW is present only when GPU power sampling was enabled.
	AverageGPUPowerW *float64

	ThermalState sampling.ThermalState
}

// reduceSamples folds the session buffer into peak and mean. An empty buffer
// reduces to (0, 0).
func reduceSamples(samples []Sample) (peak, avg float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		if s.MemoryMB > peak {
			peak = s.MemoryMB
		}
		sum += s.MemoryMB
	}
	return peak, sum / float64(len(samples))
}
