package recording

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run records in a SQLite database. The full record is
// stored as a versioned JSON document alongside a few indexed columns, so
// schema additions do not require migrations.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLiteStore creates (or opens) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &PersistenceError{Err: err}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, &PersistenceError{Err: err}
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		model_name TEXT,
		schema_version INTEGER NOT NULL,
		record TEXT NOT NULL
	);`)
	return err
}

// Save inserts one record keyed by id.
func (s *SQLiteStore) Save(record *RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &PersistenceError{ID: record.ID, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO runs (id, timestamp, model_name, schema_version, record)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format("2006-01-02T15:04:05.999999999Z07:00"),
		record.ModelName,
		record.SchemaVersion,
		string(data),
	)
	if err != nil {
		return &PersistenceError{ID: record.ID, Err: err}
	}
	return nil
}

// Get loads one record by id.
func (s *SQLiteStore) Get(id string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var raw string
	err := s.db.QueryRow(`SELECT record FROM runs WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{ID: id, Err: err}
	}
	var record RunRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, &PersistenceError{ID: id, Err: err}
	}
	return &record, nil
}

// List returns all records ordered by start time.
func (s *SQLiteStore) List() ([]*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT record FROM runs ORDER BY datetime(timestamp) ASC`)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, &PersistenceError{Err: err}
		}
		var record RunRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
