package exporting

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const jsonlBufferSize = 64 * 1024

func init() {
	Register(&JSONLFormat{})
}

// JSONLFormat handles JSON Lines output.
type JSONLFormat struct{}

func (f *JSONLFormat) Name() string      { return "jsonl" }
func (f *JSONLFormat) Extension() string { return ".jsonl" }
func (f *JSONLFormat) Writer() Writer    { return &JSONLWriter{} }

// JSONLWriter writes one JSON document per line.
type JSONLWriter struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

func (w *JSONLWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	w.file = file
	w.writer = bufio.NewWriterSize(file, jsonlBufferSize)
	return nil
}

func (w *JSONLWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer != nil {
		return w.writer.Flush()
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *JSONLWriter) Path() string { return w.path }
