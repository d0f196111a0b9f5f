//go:build linux

package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcSamplerMemory(t *testing.T) {
	s := NewProcSampler()

	mb := s.MemoryMB()
	assert.Greater(t, mb, 0.0, "a running test binary has resident memory")

	// A repeat read never regresses to zero.
	assert.Greater(t, s.MemoryMB(), 0.0)
}

func TestProcSamplerCPUMonotonic(t *testing.T) {
	s := NewProcSampler()

	first := s.CPUPercent()
	assert.GreaterOrEqual(t, first, 0.0)

	// Burn a little CPU so the cumulative counter can only grow.
	var sink float64
	for i := 0; i < 5_000_000; i++ {
		sink += float64(i % 7)
	}
	_ = sink

	assert.GreaterOrEqual(t, s.CPUPercent(), first)
}

func TestNoBatteryAlwaysUnavailable(t *testing.T) {
	level, charging, ok := NoBattery{}.Battery()
	assert.Zero(t, level)
	assert.False(t, charging)
	assert.False(t, ok)
}
