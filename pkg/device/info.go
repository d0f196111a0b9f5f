// Package device collects static provenance about the host under
// measurement, persisted with every run record so offline analysis can
// group results by hardware and OS.
package device

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"InferenceHarness/pkg/probing"
)

const (
	dmiProductPath = "/sys/devices/virtual/dmi/id/product_name"
	deviceTreePath = "/proc/device-tree/model"
	unknownValue   = "unknown"
)

// Info identifies the device a record was captured on.
type Info struct {
	DeviceModel   string `json:"deviceModel"`
	OSVersion     string `json:"osVersion"`
	Hostname      string `json:"hostname"`
	Arch          string `json:"arch"`
	NumCPU        int    `json:"numCPU"`
	TotalMemoryMB int64  `json:"totalMemoryMB"`
}

// Collect gathers device info. Every field degrades to a neutral value on
// read failure; collection itself never fails.
func Collect() Info {
	info := Info{
		DeviceModel: readModel(),
		OSVersion:   readOSVersion(),
		Arch:        runtime.GOARCH,
		NumCPU:      runtime.NumCPU(),
	}
	info.Hostname, _ = os.Hostname()

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		info.TotalMemoryMB = int64(si.Totalram) * int64(si.Unit) / (1024 * 1024)
	}
	return info
}

// readModel prefers the DMI product name, falling back to the device-tree
// model on ARM boards.
func readModel() string {
	if m, ok := probing.FileString(dmiProductPath); ok && m != "" {
		return m
	}
	if m, ok := probing.FileString(deviceTreePath); ok && m != "" {
		return m
	}
	return unknownValue
}

func readOSVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return unknownValue
	}
	return unix.ByteSliceToString(uts.Sysname[:]) + " " + unix.ByteSliceToString(uts.Release[:])
}
