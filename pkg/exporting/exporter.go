package exporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exporter writes flattened run records to one output file.
type Exporter struct {
	path   string
	format string
	writer Writer
}

// NewExporter creates an exporter for the given path and format name.
func NewExporter(path, format string) (*Exporter, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize writer: %w", err)
	}

	return &Exporter{path: path, format: format, writer: writer}, nil
}

// Path returns the output file path.
func (e *Exporter) Path() string { return e.path }

// Format returns the output format name.
func (e *Exporter) Format() string { return e.format }

// Write writes a single record.
func (e *Exporter) Write(record Record) error {
	return e.writer.Write(record)
}

// WriteAll writes a batch of records.
func (e *Exporter) WriteAll(records []Record) error {
	for i, r := range records {
		if err := e.writer.Write(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

// Close finalizes the output file.
func (e *Exporter) Close() error {
	return e.writer.Close()
}
