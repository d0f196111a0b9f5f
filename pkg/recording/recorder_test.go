package recording

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (s *failingStore) Save(*RunRecord) error          { return s.err }
func (s *failingStore) Get(string) (*RunRecord, error) { return nil, ErrNotFound }
func (s *failingStore) List() ([]*RunRecord, error)    { return nil, nil }
func (s *failingStore) Close() error                   { return nil }

func TestRecordPersistFailureKeepsRecord(t *testing.T) {
	boom := errors.New("disk full")
	rec := NewRecorder(&failingStore{err: boom})

	record, err := rec.Record(sampleResult(), sampleProvenance())

	// The in-memory record survives the persistence failure.
	require.NotNil(t, record)
	assert.Equal(t, 43, record.TotalTokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRecordRejectsIncompleteResult(t *testing.T) {
	rec := NewRecorder(&failingStore{})

	res := sampleResult()
	res.Metrics = nil
	record, err := rec.Record(res, sampleProvenance())

	assert.Nil(t, record)
	require.Error(t, err)
	var perr *PersistenceError
	assert.True(t, errors.As(err, &perr))
}

func TestRecordSavesThroughStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	rec := NewRecorder(store)

	record, err := rec.Record(sampleResult(), sampleProvenance())
	require.NoError(t, err)
	require.NotNil(t, record)

	got, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.PromptText, got.PromptText)
}
