// Package probing provides low-level reads of /proc and /sys telemetry files.
//
// All probes are best-effort: a failed read reports a zero value and ok=false
// instead of an error, so a missing or transiently unreadable sensor never
// interrupts a measurement in progress.
package probing

import (
	"os"
	"strconv"
	"strings"
)

// File reads a file and returns its content.
func File(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// FileInt reads a file and parses its content as int64.
func FileInt(path string) (int64, bool) {
	v, ok := File(path)
	if !ok {
		return 0, false
	}
	val, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// FileFloat reads a file and parses its content as float64.
func FileFloat(path string) (float64, bool) {
	v, ok := File(path)
	if !ok {
		return 0, false
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// FileString reads a file and returns its content with whitespace trimmed.
func FileString(path string) (string, bool) {
	v, ok := File(path)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// FileLines reads a file into lines. A failed read yields no lines.
func FileLines(path string) []string {
	v, ok := File(path)
	if !ok {
		return nil
	}
	return strings.Split(v, "\n")
}

// FileKV reads a key-value file like /proc/meminfo.
func FileKV(path, sep string) map[string]string {
	kv := make(map[string]string)
	for _, line := range FileLines(path) {
		idx := strings.Index(line, sep)
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+len(sep):])
		kv[key] = val
	}
	return kv
}

// ParseInt64 parses an int64, returning 0 on failure.
func ParseInt64(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseFloat64 parses a float64, returning 0 on failure.
func ParseFloat64(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// Exists checks if a path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
