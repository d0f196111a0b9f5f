package recording

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for an id with no persisted record.
var ErrNotFound = errors.New("run record not found")

// PersistenceError wraps a storage I/O failure. It is surfaced to the
// caller but does not invalidate the in-memory record already returned;
// persistence may be retried independently.
type PersistenceError struct {
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist run %s: %v", e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is durable, id-addressable run record storage.
type Store interface {
	Save(record *RunRecord) error
	Get(id string) (*RunRecord, error)
	List() ([]*RunRecord, error)
	Close() error
}
