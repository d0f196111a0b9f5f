// Package sampling reads instantaneous resource telemetry for the process
// under measurement: resident memory, CPU usage, battery state, thermal
// state, and (optionally) GPU power draw.
package sampling

// MemoryReader reports the current resident memory of the process.
type MemoryReader interface {
	// MemoryMB returns resident memory in megabytes. It is a point-in-time
	// read with no side effects and must not block beyond a few
	// milliseconds. On a read failure it returns the last known good value
	// (0 if none yet) rather than an error.
	MemoryMB() float64
}

// CPUReader reports cumulative CPU usage of the process.
type CPUReader interface {
	// CPUPercent returns cumulative CPU usage in percent-seconds since the
	// reader was created: the integral over wall time of instantaneous
	// utilization (percent, all threads summed). A process that has burned
	// 2.5 CPU-seconds reads 250. The absolute value is meaningless on its
	// own; the delta between two readings divided by the wall seconds
	// between them is the average utilization for that window, which is
	// what the energy estimator consumes.
	CPUPercent() float64
}

// BatteryReader reports battery charge state.
type BatteryReader interface {
	// Battery returns the charge level as a fraction in [0,1], whether the
	// device is currently charging, and whether a battery reading was
	// available at all.
	Battery() (level float64, charging bool, ok bool)
}

// ThermalReader reports the device thermal pressure level.
type ThermalReader interface {
	Thermal() ThermalState
}
