package recording

import (
	"errors"
	"log"

	"InferenceHarness/pkg/inference"
)

var errIncompleteRun = errors.New("run result missing metrics snapshot")

// Recorder merges run outputs into records and persists them.
type Recorder struct {
	store Store
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record merges the engine result into a RunRecord and persists it. The
// record is returned even when persistence fails: the caller keeps a valid
// in-memory record and may retry persistence independently.
func (r *Recorder) Record(res *inference.Result, prov Provenance) (*RunRecord, error) {
	record := Merge(res, prov)
	if record == nil {
		return nil, &PersistenceError{Err: errIncompleteRun}
	}
	if err := r.store.Save(record); err != nil {
		log.Printf("WARNING: failed to persist run %s: %v", record.ID, err)
		return record, err
	}
	return record, nil
}
