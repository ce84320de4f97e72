package bulkimport

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BatchState is the lifecycle of an uploaded import batch.
type BatchState string

const (
	BatchStateMapping     BatchState = "mapping"     // parsed, awaiting mapping confirm
	BatchStateReady       BatchState = "ready"       // mapping confirmed, rows validated
	BatchStateDispatching BatchState = "dispatching" // invitations in flight
	BatchStateDone        BatchState = "done"        // dispatch finished with failures kept for inspection
)

var (
	// ErrBatchNotFound is returned for unknown or already-reset batch ids.
	ErrBatchNotFound = errors.New("import batch not found")
	// ErrBatchBusy is returned when a mutation races an in-flight dispatch.
	ErrBatchBusy = errors.New("import batch is dispatching")
	// ErrRowIndex is returned for an out-of-range row removal.
	ErrRowIndex = errors.New("row index out of range")
)

// Batch is one uploaded spreadsheet moving through the import pipeline.
// A batch is owned by the operator who uploaded it and lives in memory
// only; a full-success dispatch removes it (ready for a new file).
type Batch struct {
	ID        uuid.UUID      `json:"id"`
	Filename  string         `json:"filename"`
	Table     *Table         `json:"-"`
	Mapping   ColumnMapping  `json:"mapping"`
	Valid     []DelegateRow  `json:"valid_rows,omitempty"`
	Skipped   int            `json:"skipped"`
	State     BatchState     `json:"state"`
	Summary   *Summary       `json:"summary,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store holds in-flight import batches, keyed by id.
type Store struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*Batch
}

// NewStore creates an empty batch store.
func NewStore() *Store {
	return &Store{batches: make(map[uuid.UUID]*Batch)}
}

// Create registers a freshly parsed table with its guessed mapping.
func (s *Store) Create(filename string, table *Table) *Batch {
	b := &Batch{
		ID:        uuid.New(),
		Filename:  filename,
		Table:     table,
		Mapping:   GuessMapping(table.Columns),
		State:     BatchStateMapping,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()
	return b
}

// Get returns a batch by id.
func (s *Store) Get(id uuid.UUID) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return b, nil
}

// ConfirmMapping validates the operator's mapping against the batch rows
// and moves the batch to ready.
func (s *Store) ConfirmMapping(id uuid.UUID, m ColumnMapping) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	if b.State == BatchStateDispatching {
		return nil, ErrBatchBusy
	}
	res, err := Confirm(m, b.Table.Rows)
	if err != nil {
		return nil, err
	}
	b.Mapping = m
	b.Valid = res.Valid
	b.Skipped = res.Skipped
	b.State = BatchStateReady
	b.Summary = nil
	return b, nil
}

// RemoveRow drops one validated row before dispatch.
func (s *Store) RemoveRow(id uuid.UUID, index int) (*Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	if b.State == BatchStateDispatching {
		return nil, ErrBatchBusy
	}
	if index < 0 || index >= len(b.Valid) {
		return nil, ErrRowIndex
	}
	b.Valid = append(b.Valid[:index], b.Valid[index+1:]...)
	return b, nil
}

// BeginDispatch moves a ready batch to dispatching and returns its rows.
func (s *Store) BeginDispatch(id uuid.UUID) ([]DelegateRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	if b.State == BatchStateDispatching {
		return nil, ErrBatchBusy
	}
	if b.State != BatchStateReady || len(b.Valid) == 0 {
		return nil, ErrNoValidRows
	}
	b.State = BatchStateDispatching
	rows := make([]DelegateRow, len(b.Valid))
	copy(rows, b.Valid)
	return rows, nil
}

// FinishDispatch records the summary. A fully successful batch is removed
// (state reset, ready for a new file); failures keep the batch and its
// per-row results visible for inspection.
func (s *Store) FinishDispatch(id uuid.UUID, summary Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return
	}
	if summary.Failed == 0 {
		delete(s.batches, id)
		return
	}
	b.Summary = &summary
	b.State = BatchStateDone
}
