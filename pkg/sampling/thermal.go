package sampling

import (
	"path/filepath"

	"InferenceHarness/pkg/probing"
)

// ThermalState is the ordered device heat severity level, used to
// contextualize performance variance across runs.
type ThermalState int

const (
	ThermalNominal ThermalState = iota
	ThermalFair
	ThermalSerious
	ThermalCritical
)

// Temperature thresholds (millidegrees C) mapping zone readings onto states.
const (
	thermalFairMilliC     = 60_000
	thermalSeriousMilliC  = 75_000
	thermalCriticalMilliC = 85_000
)

func (s ThermalState) String() string {
	switch s {
	case ThermalNominal:
		return "nominal"
	case ThermalFair:
		return "fair"
	case ThermalSerious:
		return "serious"
	case ThermalCritical:
		return "critical"
	default:
		return "nominal"
	}
}

// ThermalStateFromString parses a persisted thermal state name. Unknown
// names map to nominal.
func ThermalStateFromString(s string) ThermalState {
	switch s {
	case "fair":
		return ThermalFair
	case "serious":
		return ThermalSerious
	case "critical":
		return ThermalCritical
	default:
		return ThermalNominal
	}
}

// ThermalStateFromMilliC maps a temperature reading onto a state.
func ThermalStateFromMilliC(milliC int64) ThermalState {
	switch {
	case milliC >= thermalCriticalMilliC:
		return ThermalCritical
	case milliC >= thermalSeriousMilliC:
		return ThermalSerious
	case milliC >= thermalFairMilliC:
		return ThermalFair
	default:
		return ThermalNominal
	}
}

const thermalZoneGlob = "/sys/class/thermal/thermal_zone*/temp"

// SysfsThermal derives the thermal state from the hottest thermal zone.
// Implements ThermalReader. Machines without thermal zones read nominal.
type SysfsThermal struct{}

func NewSysfsThermal() *SysfsThermal { return &SysfsThermal{} }

func (SysfsThermal) Thermal() ThermalState {
	paths, err := filepath.Glob(thermalZoneGlob)
	if err != nil {
		return ThermalNominal
	}
	var hottest int64
	for _, p := range paths {
		if v, ok := probing.FileInt(p); ok && v > hottest {
			hottest = v
		}
	}
	return ThermalStateFromMilliC(hottest)
}
