package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler handles the staff bulk-import HTTP endpoints.
type Handler struct {
	store   *Store
	hub     *ProgressHub
	inviter Inviter
	logger  *zap.Logger

	// dispatchCtx outlives the upload request so an in-flight batch is not
	// cut off when the operator's HTTP call returns.
	dispatchCtx context.Context
}

// NewHandler creates a bulk-import handler. dispatchCtx should be the
// server's lifetime context.
func NewHandler(store *Store, hub *ProgressHub, inviter Inviter, dispatchCtx context.Context, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatchCtx == nil {
		dispatchCtx = context.Background()
	}
	return &Handler{store: store, hub: hub, inviter: inviter, dispatchCtx: dispatchCtx, logger: logger}
}

// Upload handles POST /bulk-import. Parses the spreadsheet, guesses a
// column mapping and returns the batch for mapping confirmation.
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return
	}
	defer file.Close()

	table, err := Parse(header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrNoRows) || errors.Is(err, ErrUnsupportedFile) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Warn("spreadsheet parse failed", zap.Error(err), zap.String("filename", header.Filename))
		response.BadRequest(c, "could not read the file: "+err.Error())
		return
	}

	batch := h.store.Create(header.Filename, table)
	response.OK(c, gin.H{
		"batch_id":  batch.ID,
		"columns":   table.Columns,
		"row_count": len(table.Rows),
		"mapping":   batch.Mapping,
		"complete":  batch.Mapping.Complete(),
	})
}

// Columns handles GET /bulk-import/:id/columns?field=. Returns the columns
// the given field's dropdown may offer under the batch's current mapping.
func (h *Handler) Columns(c *gin.Context) {
	batch, ok := h.batchFromParam(c)
	if !ok {
		return
	}
	field := c.Query("field")
	switch field {
	case FieldEmail, FieldFirstName, FieldLastName:
	default:
		response.BadRequest(c, "field must be one of email, firstName, lastName")
		return
	}
	response.OK(c, gin.H{
		"field":   field,
		"columns": AvailableColumns(batch.Mapping, field, batch.Table.Columns),
	})
}

// ConfirmMapping handles POST /bulk-import/:id/confirm. Applies the
// operator's mapping, reporting skipped rows as a warning; zero valid rows
// blocks with an error.
func (h *Handler) ConfirmMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	var m ColumnMapping
	if err := c.ShouldBindJSON(&m); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	batch, err := h.store.ConfirmMapping(id, m)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	body := gin.H{
		"batch_id":    batch.ID,
		"valid_rows":  batch.Valid,
		"valid_count": len(batch.Valid),
		"skipped":     batch.Skipped,
	}
	if batch.Skipped > 0 {
		body["warning"] = fmt.Sprintf("%d row(s) skipped: missing email, first name or last name", batch.Skipped)
	}
	response.OK(c, body)
}

// RemoveRow handles DELETE /bulk-import/:id/rows/:index.
func (h *Handler) RemoveRow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "invalid row index")
		return
	}
	batch, err := h.store.RemoveRow(id, index)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	response.OK(c, gin.H{"batch_id": batch.ID, "valid_count": len(batch.Valid)})
}

// Dispatch handles POST /bulk-import/:id/dispatch. Invitations run
// sequentially in the background; progress streams over the batch
// websocket and the summary is also available from Get once finished.
func (h *Handler) Dispatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	actor, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	rows, err := h.store.BeginDispatch(id)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	go func() {
		summary := Dispatch(h.dispatchCtx, actor, rows, h.inviter, func(p Progress) {
			h.hub.PublishProgress(id, p)
		})
		h.hub.PublishSummary(id, summary)
		h.store.FinishDispatch(id, summary)
		h.logger.Info("bulk import dispatched",
			zap.String("batch_id", id.String()),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)
	}()

	c.JSON(202, gin.H{"success": true, "data": gin.H{"batch_id": id, "total": len(rows)}})
}

// Get handles GET /bulk-import/:id. A batch that dispatched fully
// successfully has been reset and returns 404.
func (h *Handler) Get(c *gin.Context) {
	batch, ok := h.batchFromParam(c)
	if !ok {
		return
	}
	body := gin.H{
		"batch_id":    batch.ID,
		"filename":    batch.Filename,
		"state":       batch.State,
		"mapping":     batch.Mapping,
		"columns":     batch.Table.Columns,
		"valid_count": len(batch.Valid),
		"skipped":     batch.Skipped,
	}
	if batch.Summary != nil {
		body["summary"] = batch.Summary
		body["message"] = fmt.Sprintf("%d invited, %d failed", batch.Summary.Succeeded, batch.Summary.Failed)
	}
	response.OK(c, body)
}

func (h *Handler) batchFromParam(c *gin.Context) (*Batch, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return nil, false
	}
	batch, err := h.store.Get(id)
	if err != nil {
		response.NotFound(c, ErrBatchNotFound.Error())
		return nil, false
	}
	return batch, true
}

func (h *Handler) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBatchNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrBatchBusy):
		response.Conflict(c, err.Error())
	case errors.Is(err, ErrMappingIncomplete), errors.Is(err, ErrNoValidRows), errors.Is(err, ErrRowIndex):
		response.BadRequest(c, err.Error())
	default:
		h.logger.Error("bulk import error", zap.Error(err))
		response.Internal(c, "bulk import failed")
	}
}
