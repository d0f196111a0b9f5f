package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"InferenceHarness/pkg/device"
	"InferenceHarness/pkg/sampling"
)

var snapshotWindow time.Duration

// snapshot is the one-shot telemetry document printed by the snapshot
// command.
type snapshot struct {
	Timestamp      time.Time   `json:"timestamp"`
	Device         device.Info `json:"device"`
	MemoryMB       float64     `json:"memoryMB"`
	CPUUtilization float64     `json:"cpuUtilization"`
	BatteryLevel   *float64    `json:"batteryLevel"`
	Charging       *bool       `json:"charging"`
	ThermalState   string      `json:"thermalState"`
	GPUPowerW      *float64    `json:"gpuPowerW"`
}

// NewSnapshotCmd creates the snapshot subcommand.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a device/telemetry snapshot",
		Long: `Print a JSON snapshot of the device and its current telemetry: hardware
identity, process memory, CPU utilization over a short window, battery
level and charge state, thermal state, and GPU power when enabled.

Example:
  infharness snapshot --window 2s --gpu`,
		RunE: runSnapshot,
	}

	cmd.Flags().DurationVar(&snapshotWindow, "window", time.Second, "CPU utilization measurement window")
	cmd.Flags().BoolVar(&Cfg.EnableGPU, "gpu", Cfg.EnableGPU, "Sample GPU power through NVML")

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	proc := sampling.NewProcSampler()

	// CPUPercent is cumulative, so utilization needs two readings over a
	// wall-clock window.
	before := proc.CPUPercent()
	start := time.Now()
	time.Sleep(snapshotWindow)
	elapsed := time.Since(start).Seconds()

	snap := snapshot{
		Timestamp:    time.Now(),
		Device:       device.Collect(),
		MemoryMB:     proc.MemoryMB(),
		ThermalState: sampling.NewSysfsThermal().Thermal().String(),
	}
	if elapsed > 0 {
		snap.CPUUtilization = (proc.CPUPercent() - before) / elapsed
	}

	if battery := sampling.NewSysfsBattery(); battery != nil {
		if level, charging, ok := battery.Battery(); ok {
			snap.BatteryLevel = &level
			snap.Charging = &charging
		}
	}

	if Cfg.EnableGPU {
		if gpu := sampling.NewGPUPower(); gpu != nil {
			watts := gpu.PowerWatts()
			snap.GPUPowerW = &watts
			gpu.Close()
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
