package sampling

import (
	"path/filepath"
	"strings"

	"InferenceHarness/pkg/probing"
)

const powerSupplyDir = "/sys/class/power_supply"

// SysfsBattery reads battery charge state from /sys/class/power_supply.
// It implements BatteryReader. On machines without a battery every reading
// reports ok=false, which downstream consumers treat as "telemetry
// unavailable" rather than an error.
type SysfsBattery struct {
	dir string
}

// NewSysfsBattery locates the first power supply of type "Battery". Returns
// nil when none exists.
func NewSysfsBattery() *SysfsBattery {
	entries, err := filepath.Glob(filepath.Join(powerSupplyDir, "*"))
	if err != nil {
		return nil
	}
	for _, dir := range entries {
		if typ, ok := probing.FileString(filepath.Join(dir, "type")); ok && typ == "Battery" {
			return &SysfsBattery{dir: dir}
		}
	}
	return nil
}

// Battery returns the charge level in [0,1] and whether the battery is
// charging. The sysfs capacity file reports whole percent steps, so level
// deltas over short windows quantize to zero.
func (b *SysfsBattery) Battery() (float64, bool, bool) {
	if b == nil {
		return 0, false, false
	}
	pct, ok := probing.FileInt(filepath.Join(b.dir, "capacity"))
	if !ok || pct < 0 || pct > 100 {
		return 0, false, false
	}
	status, _ := probing.FileString(filepath.Join(b.dir, "status"))
	charging := strings.EqualFold(status, "Charging")
	return float64(pct) / 100, charging, true
}

// NoBattery is a BatteryReader that always reports "unavailable". Used when
// no power supply exists and in tests.
type NoBattery struct{}

func (NoBattery) Battery() (float64, bool, bool) { return 0, false, false }
