// Package exporting flattens run records into tabular files for offline
// analysis tooling: JSON Lines, CSV, or Parquet.
package exporting

import (
	"strings"
)

// Record is a flattened run record.
type Record = map[string]interface{}

// Writer writes records to a file in one format.
type Writer interface {
	Init(path string) error
	Write(record Record) error
	Flush() error
	Close() error
	Path() string
}

// Format describes one output format.
type Format interface {
	Name() string
	Extension() string
	Writer() Writer
}

var registry = make(map[string]Format)

// Register adds a format to the registry.
func Register(f Format) {
	registry[strings.ToLower(f.Name())] = f
}

// Get returns a format by name.
func Get(name string) (Format, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Names returns the registered format names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// Extension returns the file extension for a format name, defaulting to
// jsonl for unknown names.
func Extension(format string) string {
	if f, ok := Get(format); ok {
		return f.Extension()
	}
	return ".jsonl"
}
