// Package energy estimates per-run energy consumption from coarse battery
// and CPU telemetry. The figures are derived, not measured: battery-level
// deltas quantize to whole percent steps and the CPU figure comes from a
// fixed device power model, so both carry documented resolution limits.
package energy

import (
	"sync"
	"time"

	"InferenceHarness/pkg/sampling"
)

// Model holds the fixed device power model coefficients.
type Model struct {
	// BatteryCapacityJ is the full battery capacity in joules. The default
	// characterizes a 4685 mAh pack at 3.7 V.
	BatteryCapacityJ float64 `yaml:"battery_capacity_j"`
	// AvgCPUPowerW is the typical sustained package draw at full
	// utilization, in watts.
	AvgCPUPowerW float64 `yaml:"avg_cpu_power_w"`
}

// DefaultModel returns the built-in device power model.
func DefaultModel() Model {
	return Model{
		BatteryCapacityJ: 224_640,
		AvgCPUPowerW:     8.5,
	}
}

// Data is the outcome of one monitoring window.
type Data struct {
	Elapsed time.Duration

	// BatteryEnergyJ is the battery-delta estimate. It is nil when battery
	// telemetry was unavailable or the device was charging during the
	// window, in which case level changes reflect charging current, not
	// consumption. A present zero value is a valid reading: over sub-second
	// windows the whole-percent battery API resolves no drop.
	BatteryEnergyJ *float64

	// CPUEnergyJ is the model-based estimate from the CPU utilization delta
	// over the window. Always present.
	CPUEnergyJ float64

	// BatteryDropFraction is the consumed charge as a fraction of capacity,
	// clamped at zero.
	BatteryDropFraction float64

	// BatteryLevelAtStart is the charge fraction at the start of the
	// window, nil when unavailable.
	BatteryLevelAtStart *float64
}

// Estimator converts a start/end battery-level pair and a CPU-utilization
// delta into joule estimates. One monitoring window may be active at a time;
// each StartMonitoring resets the baseline.
type Estimator struct {
	model   Model
	battery sampling.BatteryReader
	cpu     sampling.CPUReader
	now     func() time.Time

	mu            sync.Mutex
	monitoring    bool
	startTime     time.Time
	startLevel    float64
	startValid    bool
	startCharging bool
	startCPU      float64
}

// New creates an estimator. A nil battery reader is treated as permanently
// unavailable telemetry.
func New(model Model, battery sampling.BatteryReader, cpu sampling.CPUReader) *Estimator {
	if battery == nil {
		battery = sampling.NoBattery{}
	}
	return &Estimator{
		model:   model,
		battery: battery,
		cpu:     cpu,
		now:     time.Now,
	}
}

// StartMonitoring records the window baseline: start time, battery level,
// and cumulative CPU usage.
func (e *Estimator) StartMonitoring() {
	level, charging, ok := e.battery.Battery()
	cpu := e.cpu.CPUPercent()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.monitoring = true
	e.startTime = e.now()
	e.startLevel = level
	e.startValid = ok
	e.startCharging = charging
	e.startCPU = cpu
}

// StopMonitoring closes the window and computes the estimates. It returns
// nil when StartMonitoring was never called. The battery figure is withheld
// (nil) when the reading was unavailable or the device was charging at
// either end of the window.
func (e *Estimator) StopMonitoring() *Data {
	endLevel, endCharging, endValid := e.battery.Battery()
	endCPU := e.cpu.CPUPercent()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.monitoring {
		return nil
	}
	e.monitoring = false

	elapsed := e.now().Sub(e.startTime)
	d := &Data{Elapsed: elapsed}

	if e.startValid {
		level := e.startLevel
		d.BatteryLevelAtStart = &level
	}

	// CPU model: the percent-seconds delta over wall seconds is the average
	// utilization for the window.
	secs := elapsed.Seconds()
	if secs > 0 {
		avgUtil := (endCPU - e.startCPU) / secs
		if avgUtil < 0 {
			avgUtil = 0
		}
		d.CPUEnergyJ = e.model.AvgCPUPowerW * secs * (avgUtil / 100)
	}

	if e.startValid && endValid && !e.startCharging && !endCharging {
		drop := e.startLevel - endLevel
		if drop < 0 {
			drop = 0
		}
		d.BatteryDropFraction = drop
		j := drop * e.model.BatteryCapacityJ
		d.BatteryEnergyJ = &j
	}

	return d
}
