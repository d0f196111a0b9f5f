package exporting

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/parquet-go/parquet-go"
)

const parquetBatchSize = 1000

func init() {
	Register(&ParquetFormat{})
}

// ParquetFormat handles Parquet output.
type ParquetFormat struct{}

func (f *ParquetFormat) Name() string      { return "parquet" }
func (f *ParquetFormat) Extension() string { return ".parquet" }
func (f *ParquetFormat) Writer() Writer    { return &ParquetWriter{} }

// ParquetWriter writes records using the Row API. The schema is inferred
// from the first record; all columns are optional so absent fields (such as
// a withheld energy estimate) encode as nulls.
type ParquetWriter struct {
	path       string
	file       *os.File
	writer     *parquet.Writer
	schema     *parquet.Schema
	columns    []string
	schemaInit bool
	buffer     []parquet.Row
	mu         sync.Mutex
}

func (w *ParquetWriter) Init(path string) error {
	w.path = path
	w.buffer = make([]parquet.Row, 0, parquetBatchSize)
	return nil
}

func (w *ParquetWriter) initSchema(record Record) error {
	w.columns = make([]string, 0, len(record))
	for k := range record {
		w.columns = append(w.columns, k)
	}
	sort.Strings(w.columns)

	group := make(parquet.Group)
	for _, name := range w.columns {
		group[name] = valueToParquetNode(record[name])
	}
	w.schema = parquet.NewSchema("run_record", group)

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.file = file
	w.writer = parquet.NewWriter(file, w.schema,
		parquet.Compression(&parquet.Snappy),
	)
	w.schemaInit = true
	return nil
}

func valueToParquetNode(val interface{}) parquet.Node {
	switch val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return parquet.Optional(parquet.Int(64))
	case float32, float64:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

func (w *ParquetWriter) recordToRow(record Record) parquet.Row {
	row := make(parquet.Row, len(w.columns))
	for i, name := range w.columns {
		val, ok := record[name]
		if !ok || val == nil {
			row[i] = parquet.NullValue().Level(0, 0, i)
			continue
		}
		row[i] = goToParquetValue(val, i)
	}
	return row
}

func goToParquetValue(val interface{}, columnIndex int) parquet.Value {
	switch v := val.(type) {
	case bool:
		return parquet.BooleanValue(v).Level(0, 1, columnIndex)
	case int:
		return parquet.Int64Value(int64(v)).Level(0, 1, columnIndex)
	case int32:
		return parquet.Int64Value(int64(v)).Level(0, 1, columnIndex)
	case int64:
		return parquet.Int64Value(v).Level(0, 1, columnIndex)
	case float32:
		return parquet.DoubleValue(float64(v)).Level(0, 1, columnIndex)
	case float64:
		return parquet.DoubleValue(v).Level(0, 1, columnIndex)
	case string:
		return parquet.ByteArrayValue([]byte(v)).Level(0, 1, columnIndex)
	default:
		return parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", v))).Level(0, 1, columnIndex)
	}
}

func (w *ParquetWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.schemaInit {
		if err := w.initSchema(record); err != nil {
			return err
		}
	}

	w.buffer = append(w.buffer, w.recordToRow(record))
	if len(w.buffer) >= parquetBatchSize {
		return w.flushLocked()
	}
	return nil
}

func (w *ParquetWriter) flushLocked() error {
	if len(w.buffer) == 0 || w.writer == nil {
		return nil
	}
	if _, err := w.writer.WriteRows(w.buffer); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	w.buffer = w.buffer[:0]
	return nil
}

func (w *ParquetWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *ParquetWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	if w.writer != nil {
		if err := w.writer.Close(); err != nil {
			return fmt.Errorf("failed to close writer: %w", err)
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *ParquetWriter) Path() string { return w.path }
