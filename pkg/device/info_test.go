//go:build linux

package device

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	info := Collect()

	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, runtime.NumCPU(), info.NumCPU)
	assert.Greater(t, info.TotalMemoryMB, int64(0))
	assert.NotEmpty(t, info.OSVersion)
}
