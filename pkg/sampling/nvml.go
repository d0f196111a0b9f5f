package sampling

import (
	"errors"
	"fmt"
	"log"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// GPUPower samples instantaneous GPU board power draw through NVML. It is an
// optional refinement for harness hosts with discrete GPUs; mobile and
// CPU-only targets simply run without it.
type GPUPower struct {
	initialized bool
	devices     []nvml.Device
}

// NewGPUPower initializes NVML and enumerates devices. Returns nil when no
// usable GPU exists, which callers treat as "GPU telemetry disabled".
func NewGPUPower() *GPUPower {
	g := &GPUPower{}
	if err := g.init(); err != nil {
		log.Printf("WARNING: GPU power sampling disabled: %v", err)
		return nil
	}
	return g
}

func (g *GPUPower) init() error {
	if ret := nvml.Init(); !errors.Is(ret, nvml.SUCCESS) {
		return fmt.Errorf("failed to initialize NVML: %s", nvml.ErrorString(ret))
	}
	count, ret := nvml.DeviceGetCount()
	if !errors.Is(ret, nvml.SUCCESS) || count == 0 {
		nvml.Shutdown()
		return fmt.Errorf("no NVIDIA devices found")
	}
	g.devices = make([]nvml.Device, count)
	for i := 0; i < count; i++ {
		g.devices[i], _ = nvml.DeviceGetHandleByIndex(i)
	}
	g.initialized = true
	return nil
}

// PowerWatts returns the summed instantaneous power draw across devices.
// A failed reading contributes zero.
func (g *GPUPower) PowerWatts() float64 {
	if g == nil || !g.initialized {
		return 0
	}
	var totalMw uint32
	for _, d := range g.devices {
		if mw, ret := d.GetPowerUsage(); errors.Is(ret, nvml.SUCCESS) {
			totalMw += mw
		}
	}
	return float64(totalMw) / 1000
}

// Close shuts NVML down.
func (g *GPUPower) Close() error {
	if g != nil && g.initialized {
		nvml.Shutdown()
		g.initialized = false
	}
	return nil
}
