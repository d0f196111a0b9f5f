package recording

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore persists each run as one pretty-printed JSON document named
// <id>.json. This is the layout the offline analysis tooling globs over.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the record document.
func (s *FileStore) Save(record *RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &PersistenceError{ID: record.ID, Err: err}
	}
	if err := os.WriteFile(s.path(record.ID), data, 0o644); err != nil {
		return &PersistenceError{ID: record.ID, Err: err}
	}
	return nil
}

// Get loads one record by id.
func (s *FileStore) Get(id string) (*RunRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{ID: id, Err: err}
	}
	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &PersistenceError{ID: id, Err: err}
	}
	return &record, nil
}

// List loads every record in the directory, ordered by start time.
func (s *FileStore) List() ([]*RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	var records []*RunRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		record, err := s.Get(id)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func (s *FileStore) Close() error { return nil }
