package exporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
)

func init() {
	Register(&CSVFormat{})
}

// CSVFormat handles comma-separated output.
type CSVFormat struct{}

func (f *CSVFormat) Name() string      { return "csv" }
func (f *CSVFormat) Extension() string { return ".csv" }
func (f *CSVFormat) Writer() Writer    { return &CSVWriter{} }

// CSVWriter writes delimited rows. The header is fixed by the first record;
// later records contribute only the columns seen there.
type CSVWriter struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	columns []string
	mu      sync.Mutex
}

func (w *CSVWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	w.file = file
	w.writer = csv.NewWriter(file)
	return nil
}

func (w *CSVWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.columns == nil {
		w.columns = make([]string, 0, len(record))
		for k := range record {
			w.columns = append(w.columns, k)
		}
		sort.Strings(w.columns)
		if err := w.writer.Write(w.columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := make([]string, len(w.columns))
	for i, col := range w.columns {
		row[i] = formatValue(record[col])
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer != nil {
		w.writer.Flush()
		return w.writer.Error()
	}
	return nil
}

func (w *CSVWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *CSVWriter) Path() string { return w.path }
