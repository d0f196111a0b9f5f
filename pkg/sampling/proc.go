package sampling

import (
	"strings"
	"sync"

	"InferenceHarness/pkg/probing"
)

const (
	procStatusPath = "/proc/self/status"
	procStatPath   = "/proc/self/stat"

	jiffiesPerSecond = 100
	kbPerMegabyte    = 1024
)

// ProcSampler reads memory and CPU telemetry for the current process from
// /proc. It implements MemoryReader and CPUReader.
type ProcSampler struct {
	mu          sync.Mutex
	lastGoodMB  float64
	baseCPUSecs float64
}

// NewProcSampler creates a sampler baselined at the current CPU time, so
// CPUPercent starts near zero.
func NewProcSampler() *ProcSampler {
	s := &ProcSampler{}
	s.baseCPUSecs = readCPUSeconds()
	return s
}

// MemoryMB returns current resident memory (VmRSS) in megabytes. A failed
// read returns the last known good value.
func (s *ProcSampler) MemoryMB() float64 {
	kv := probing.FileKV(procStatusPath, ":")
	raw, found := kv["VmRSS"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !found {
		return s.lastGoodMB
	}
	kb := probing.ParseInt64(strings.TrimSuffix(raw, " kB"))
	if kb <= 0 {
		return s.lastGoodMB
	}
	s.lastGoodMB = float64(kb) / kbPerMegabyte
	return s.lastGoodMB
}

// CPUPercent returns cumulative CPU usage in percent-seconds since the
// sampler was created. See CPUReader for the unit contract.
func (s *ProcSampler) CPUPercent() float64 {
	secs := readCPUSeconds()
	s.mu.Lock()
	defer s.mu.Unlock()
	d := secs - s.baseCPUSecs
	if d < 0 {
		d = 0
	}
	return d * 100
}

// readCPUSeconds parses utime+stime from /proc/self/stat. The comm field may
// contain spaces, so fields are counted from the closing paren.
func readCPUSeconds() float64 {
	raw, ok := probing.File(procStatPath)
	if !ok {
		return 0
	}
	idx := strings.LastIndex(raw, ")")
	if idx == -1 || idx+2 > len(raw) {
		return 0
	}
	fields := strings.Fields(raw[idx+2:])
	// After comm: field 0 is state, utime and stime are fields 11 and 12.
	if len(fields) < 13 {
		return 0
	}
	utime := probing.ParseInt64(fields[11])
	stime := probing.ParseInt64(fields[12])
	return float64(utime+stime) / jiffiesPerSecond
}
