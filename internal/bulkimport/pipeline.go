package bulkimport

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMappingIncomplete is returned when a confirm is attempted before
	// all three fields are mapped.
	ErrMappingIncomplete = errors.New("map the email, first name and last name columns before continuing")
	// ErrNoValidRows is returned when the confirmed mapping yields nothing
	// to invite; the operator must revisit the mapping.
	ErrNoValidRows = errors.New("no valid rows found with this column mapping")
)

// DelegateRow is one extracted, trimmed delegate record ready to invite.
type DelegateRow struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ConfirmResult partitions the raw rows under a confirmed mapping.
type ConfirmResult struct {
	Valid   []DelegateRow
	Skipped int
}

// Confirm applies the mapping to every raw row, trims the extracted values
// and partitions rows into valid (all three non-empty) and skipped. The
// skipped count is a warning; zero valid rows is a blocking error.
func Confirm(m ColumnMapping, rows []Row) (*ConfirmResult, error) {
	if !m.Complete() {
		return nil, ErrMappingIncomplete
	}
	res := &ConfirmResult{}
	for _, row := range rows {
		d := DelegateRow{
			Email:     strings.TrimSpace(row[m.Email]),
			FirstName: strings.TrimSpace(row[m.FirstName]),
			LastName:  strings.TrimSpace(row[m.LastName]),
		}
		if d.Email == "" || d.FirstName == "" || d.LastName == "" {
			res.Skipped++
			continue
		}
		res.Valid = append(res.Valid, d)
	}
	if len(res.Valid) == 0 {
		return nil, ErrNoValidRows
	}
	return res, nil
}

// Inviter sends one delegate invitation attributed to the staff member
// who dispatched the batch. Implementations live in internal/delegates;
// bulk import only sequences the calls.
type Inviter interface {
	Invite(ctx context.Context, actor uuid.UUID, row DelegateRow) (message string, err error)
}

// InviteResult is the outcome of one row's invitation attempt.
type InviteResult struct {
	Row     DelegateRow `json:"row"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
}

// Progress is the per-attempt counter published while a batch dispatches.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Summary aggregates a completed dispatch.
type Summary struct {
	Results   []InviteResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// Dispatch invites the rows strictly sequentially: one call at a time,
// each awaited before the next starts. A row's failure never aborts the
// batch; every row gets exactly one result. The progress callback fires
// after each attempt.
func Dispatch(ctx context.Context, actor uuid.UUID, rows []DelegateRow, inviter Inviter, onProgress func(Progress)) Summary {
	summary := Summary{Results: make([]InviteResult, 0, len(rows))}
	for i, row := range rows {
		msg, err := inviter.Invite(ctx, actor, row)
		if err != nil {
			summary.Results = append(summary.Results, InviteResult{Row: row, Success: false, Message: err.Error()})
			summary.Failed++
		} else {
			summary.Results = append(summary.Results, InviteResult{Row: row, Success: true, Message: msg})
			summary.Succeeded++
		}
		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: len(rows)})
		}
	}
	return summary
}
