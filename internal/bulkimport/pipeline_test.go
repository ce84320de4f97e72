package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmPartitionsRows(t *testing.T) {
	m := ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"}
	rows := []Row{
		{"Email": " awa@example.org ", "First": "Awa", "Last": "Diop"},
		{"Email": "kofi@example.org", "First": "Kofi", "Last": "   "}, // blank after trim
		{"Email": "", "First": "Nadia", "Last": "Haddad"},
		{"Email": "femi@example.org", "First": "Femi", "Last": "Adeyemi"},
	}

	res, err := Confirm(m, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Valid, 2)
	assert.Equal(t, DelegateRow{Email: "awa@example.org", FirstName: "Awa", LastName: "Diop"}, res.Valid[0])
	assert.Equal(t, len(rows)-len(res.Valid), res.Skipped)
}

func TestConfirmIncompleteMapping(t *testing.T) {
	_, err := Confirm(ColumnMapping{Email: "Email"}, []Row{{"Email": "a@b.c"}})
	assert.ErrorIs(t, err, ErrMappingIncomplete)
}

func TestConfirmNoValidRowsBlocks(t *testing.T) {
	m := ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"}
	_, err := Confirm(m, []Row{
		{"Email": "", "First": "", "Last": ""},
		{"Email": "x@y.z", "First": "", "Last": "Q"},
	})
	assert.ErrorIs(t, err, ErrNoValidRows)
}

// seqInviter fails a chosen row and records that calls never overlap.
type seqInviter struct {
	failAt   int // 1-based row number to fail, 0 = none
	calls    int
	inFlight bool
	overlap  bool
	actors   []uuid.UUID
}

func (s *seqInviter) Invite(ctx context.Context, actor uuid.UUID, row DelegateRow) (string, error) {
	if s.inFlight {
		s.overlap = true
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	s.calls++
	s.actors = append(s.actors, actor)
	if s.calls == s.failAt {
		return "", errors.New("mail server rejected the address")
	}
	return "invitation sent", nil
}

func testRows(n int) []DelegateRow {
	rows := make([]DelegateRow, n)
	for i := range rows {
		rows[i] = DelegateRow{
			Email:     fmt.Sprintf("d%d@example.org", i),
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
		}
	}
	return rows
}

func TestDispatchSequentialWithIsolatedFailure(t *testing.T) {
	inviter := &seqInviter{failAt: 3}
	rows := testRows(5)
	staff := uuid.New()

	var progress []Progress
	summary := Dispatch(context.Background(), staff, rows, inviter, func(p Progress) {
		progress = append(progress, p)
	})

	// One call and one result per row, whatever happened to row 3.
	assert.Equal(t, 5, inviter.calls)
	assert.False(t, inviter.overlap, "invitations must never run concurrently")
	require.Len(t, summary.Results, 5)
	for i, res := range summary.Results {
		if i == 2 {
			assert.False(t, res.Success)
			assert.Equal(t, "mail server rejected the address", res.Message)
		} else {
			assert.True(t, res.Success)
		}
	}
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	// Every row is invited on behalf of the dispatching staff member.
	for _, actor := range inviter.actors {
		assert.Equal(t, staff, actor)
	}

	// Progress fires after every attempt, in order.
	require.Len(t, progress, 5)
	for i, p := range progress {
		assert.Equal(t, Progress{Current: i + 1, Total: 5}, p)
	}
}

func TestDispatchAllSucceedResetsBatch(t *testing.T) {
	store := NewStore()
	table := &Table{
		Columns: []string{"Email", "First", "Last"},
		Rows: []Row{
			{"Email": "awa@example.org", "First": "Awa", "Last": "Diop"},
		},
	}
	batch := store.Create("delegates.csv", table)
	_, err := store.ConfirmMapping(batch.ID, ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"})
	require.NoError(t, err)

	rows, err := store.BeginDispatch(batch.ID)
	require.NoError(t, err)
	summary := Dispatch(context.Background(), uuid.New(), rows, &seqInviter{}, nil)
	store.FinishDispatch(batch.ID, summary)

	// Full success clears all bulk-import state for the batch.
	_, err = store.Get(batch.ID)
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestDispatchFailuresKeepBatchForInspection(t *testing.T) {
	store := NewStore()
	table := &Table{
		Columns: []string{"Email", "First", "Last"},
		Rows: []Row{
			{"Email": "awa@example.org", "First": "Awa", "Last": "Diop"},
			{"Email": "kofi@example.org", "First": "Kofi", "Last": "Mensah"},
		},
	}
	batch := store.Create("delegates.csv", table)
	_, err := store.ConfirmMapping(batch.ID, ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"})
	require.NoError(t, err)

	rows, err := store.BeginDispatch(batch.ID)
	require.NoError(t, err)
	summary := Dispatch(context.Background(), uuid.New(), rows, &seqInviter{failAt: 2}, nil)
	store.FinishDispatch(batch.ID, summary)

	kept, err := store.Get(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, BatchStateDone, kept.State)
	require.NotNil(t, kept.Summary)
	assert.Equal(t, 1, kept.Summary.Succeeded)
	assert.Equal(t, 1, kept.Summary.Failed)
}

func TestRemoveRowBeforeDispatch(t *testing.T) {
	store := NewStore()
	table := &Table{
		Columns: []string{"Email", "First", "Last"},
		Rows: []Row{
			{"Email": "awa@example.org", "First": "Awa", "Last": "Diop"},
			{"Email": "kofi@example.org", "First": "Kofi", "Last": "Mensah"},
		},
	}
	batch := store.Create("delegates.csv", table)
	_, err := store.ConfirmMapping(batch.ID, ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"})
	require.NoError(t, err)

	updated, err := store.RemoveRow(batch.ID, 0)
	require.NoError(t, err)
	require.Len(t, updated.Valid, 1)
	assert.Equal(t, "kofi@example.org", updated.Valid[0].Email)

	_, err = store.RemoveRow(batch.ID, 5)
	assert.ErrorIs(t, err, ErrRowIndex)
}

func TestGuessMappingSeededOnCreate(t *testing.T) {
	store := NewStore()
	table := &Table{Columns: []string{"E-Mail", "Prenom", "Nom"}, Rows: []Row{{}}}
	batch := store.Create("delegates.xlsx", table)
	assert.Equal(t, ColumnMapping{Email: "E-Mail", FirstName: "Prenom", LastName: "Nom"}, batch.Mapping)
}
