package abstracts

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/auth"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/changelog"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/forms"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/storage"
)

// Handler handles abstract submission and review endpoints.
type Handler struct {
	repo   *Repository
	users  *auth.Repository
	store  *storage.S3
	audit  *changelog.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

func NewHandler(repo *Repository, users *auth.Repository, store *storage.S3, audit *changelog.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, users: users, store: store, audit: audit, queue: q, logger: logger}
}

type abstractRequest struct {
	Title            string `json:"title" binding:"required"`
	Body             string `json:"body" binding:"required"`
	Keywords         string `json:"keywords"`
	PresentationType string `json:"presentation_type"`
}

// checkWordLimits gates title and body before anything is persisted. The
// counts ignore markup from the rich-text editor.
func checkWordLimits(title, body string) []string {
	var violations []string
	if err := forms.CheckWordLimit("Title", title, models.AbstractTitleWordLimit); err != nil {
		violations = append(violations, err.Error())
	}
	if err := forms.CheckWordLimit("Body", body, models.AbstractBodyWordLimit); err != nil {
		violations = append(violations, err.Error())
	}
	return violations
}

// Create handles POST /abstracts.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req abstractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and body are required")
		return
	}
	if violations := checkWordLimits(req.Title, req.Body); len(violations) > 0 {
		response.UnprocessableEntity(c, "abstract exceeds word limits", violations)
		return
	}

	a := &models.Abstract{
		UserID:           userID,
		Title:            req.Title,
		Body:             req.Body,
		Keywords:         req.Keywords,
		PresentationType: req.PresentationType,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		h.logger.Error("create abstract failed", zap.Error(err))
		response.Internal(c, "failed to save abstract")
		return
	}

	h.audit.Record(c.Request.Context(), "abstract", a.ID, "created", &userID, gin.H{"title": a.Title})
	response.Created(c, a)
}

// Update handles PUT /abstracts/:id. Only the owner may edit, and only
// while the abstract is pending or has more info requested.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	if a.UserID != userID {
		response.Forbidden(c, "not your abstract")
		return
	}
	if a.Status != models.AbstractStatusPending && a.Status != models.AbstractStatusMoreInfo {
		response.Conflict(c, "abstract can no longer be edited")
		return
	}

	var req abstractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and body are required")
		return
	}
	if violations := checkWordLimits(req.Title, req.Body); len(violations) > 0 {
		response.UnprocessableEntity(c, "abstract exceeds word limits", violations)
		return
	}

	a.Title = req.Title
	a.Body = req.Body
	a.Keywords = req.Keywords
	a.PresentationType = req.PresentationType
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		h.logger.Error("update abstract failed", zap.Error(err))
		response.Internal(c, "failed to update abstract")
		return
	}

	h.audit.Record(c.Request.Context(), "abstract", a.ID, "updated", &userID, gin.H{"title": a.Title})
	response.OK(c, a)
}

// UploadFile handles POST /abstracts/:id/file. Accepts a single PDF.
func (h *Handler) UploadFile(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "file storage is not configured")
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	if a.UserID != userID {
		response.Forbidden(c, "not your abstract")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(header.Filename)
	}
	if !storage.ValidatePDF(contentType, header.Filename) {
		response.BadRequest(c, "abstract file must be a PDF")
		return
	}

	key := storage.AbstractKey(a.ID.String(), header.Filename)
	if _, err := h.store.Upload(c.Request.Context(), key, contentType, file, header.Size); err != nil {
		h.logger.Error("abstract upload failed", zap.String("abstract_id", a.ID.String()), zap.Error(err))
		response.Internal(c, "failed to store file")
		return
	}

	a.FileKey = key
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to attach file")
		return
	}
	response.OK(c, gin.H{"file_key": key})
}

// DownloadURL handles GET /abstracts/:id/file. Returns a presigned link.
func (h *Handler) DownloadURL(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "file storage is not configured")
		return
	}
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	if a.FileKey == "" {
		response.NotFound(c, "abstract has no file")
		return
	}
	url, err := h.store.GeneratePresignedDownloadURL(c.Request.Context(), a.FileKey, h.store.PresignExpire())
	if err != nil {
		h.logger.Error("presign failed", zap.Error(err))
		response.Internal(c, "failed to generate download link")
		return
	}
	response.OK(c, gin.H{"url": url})
}

// Get handles GET /abstracts/:id, with comments and co-authors inlined.
func (h *Handler) Get(c *gin.Context) {
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	comments, err := h.repo.Comments(c.Request.Context(), a.ID)
	if err != nil {
		response.Internal(c, "failed to load comments")
		return
	}
	coauthors, err := h.repo.Coauthors(c.Request.Context(), a.ID)
	if err != nil {
		response.Internal(c, "failed to load co-authors")
		return
	}
	response.OK(c, gin.H{"abstract": a, "comments": comments, "coauthors": coauthors})
}

// List handles GET /abstracts?status=&mine=&limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	var owner *uuid.UUID
	if c.Query("mine") == "true" {
		if userID, ok := middleware.UserID(c); ok {
			owner = &userID
		}
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	list, err := h.repo.List(c.Request.Context(), c.Query("status"), owner, limit, offset)
	if err != nil {
		h.logger.Error("list abstracts failed", zap.Error(err))
		response.Internal(c, "failed to list abstracts")
		return
	}
	response.OK(c, gin.H{"abstracts": list, "count": len(list)})
}

// Delete handles DELETE /abstracts/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	if a.UserID != userID {
		response.Forbidden(c, "not your abstract")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), a.ID); err != nil {
		response.Internal(c, "failed to delete abstract")
		return
	}
	if a.FileKey != "" && h.store != nil {
		if err := h.store.DeleteObject(c.Request.Context(), a.FileKey); err != nil {
			h.logger.Warn("abstract file cleanup failed", zap.String("key", a.FileKey), zap.Error(err))
		}
	}
	h.audit.Record(c.Request.Context(), "abstract", a.ID, "deleted", &userID, nil)
	response.NoContent(c)
}

var validTransitions = map[models.AbstractStatus]bool{
	models.AbstractStatusApproved: true,
	models.AbstractStatusRejected: true,
	models.AbstractStatusMoreInfo: true,
	models.AbstractStatusPending:  true,
}

// SetStatus handles POST /abstracts/:id/status (staff). Records history
// and notifies the author.
func (h *Handler) SetStatus(c *gin.Context) {
	reviewerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid abstract id")
		return
	}

	var req struct {
		Status models.AbstractStatus `json:"status" binding:"required"`
		Note   string                `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validTransitions[req.Status] {
		response.BadRequest(c, "status must be one of pending, approved, rejected, more_info_requested")
		return
	}

	a, err := h.repo.SetStatus(c.Request.Context(), id, req.Status, reviewerID, req.Note)
	if err != nil {
		if errors.Is(err, ErrAbstractNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("status change failed", zap.Error(err))
		response.Internal(c, "failed to change status")
		return
	}

	h.audit.Record(c.Request.Context(), "abstract", a.ID, "status_changed", &reviewerID, gin.H{
		"to":   a.Status,
		"note": req.Note,
	})
	h.notifyDecision(c, a, req.Note)
	response.OK(c, a)
}

// History handles GET /abstracts/:id/history (staff).
func (h *Handler) History(c *gin.Context) {
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	history, err := h.repo.StatusHistory(c.Request.Context(), a.ID)
	if err != nil {
		response.Internal(c, "failed to load history")
		return
	}
	response.OK(c, gin.H{"history": history})
}

// AddComment handles POST /abstracts/:id/comments (staff).
func (h *Handler) AddComment(c *gin.Context) {
	authorID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content is required")
		return
	}

	cm := &models.AbstractComment{AbstractID: a.ID, AuthorID: authorID, Content: req.Content}
	if err := h.repo.AddComment(c.Request.Context(), cm); err != nil {
		response.Internal(c, "failed to add comment")
		return
	}
	response.Created(c, cm)
}

// AddCoauthor handles POST /abstracts/:id/coauthors.
func (h *Handler) AddCoauthor(c *gin.Context) {
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	var req struct {
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Affiliation string `json:"affiliation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "first_name, last_name and a valid email are required")
		return
	}

	co := &models.Coauthor{
		AbstractID:  a.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Affiliation: req.Affiliation,
	}
	if err := h.repo.AddCoauthor(c.Request.Context(), co); err != nil {
		response.Internal(c, "failed to add co-author")
		return
	}
	response.Created(c, co)
}

// DeleteCoauthor handles DELETE /abstracts/:id/coauthors/:coauthorID. The
// client confirms before dispatching; the server deletes unconditionally.
func (h *Handler) DeleteCoauthor(c *gin.Context) {
	a, ok := h.abstractFromParam(c)
	if !ok {
		return
	}
	coauthorID, err := uuid.Parse(c.Param("coauthorID"))
	if err != nil {
		response.BadRequest(c, "invalid co-author id")
		return
	}
	if err := h.repo.DeleteCoauthor(c.Request.Context(), a.ID, coauthorID); err != nil {
		if errors.Is(err, ErrCoauthorNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to delete co-author")
		return
	}
	response.NoContent(c)
}

func (h *Handler) abstractFromParam(c *gin.Context) (*models.Abstract, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid abstract id")
		return nil, false
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAbstractNotFound) {
			response.NotFound(c, err.Error())
			return nil, false
		}
		h.logger.Error("get abstract failed", zap.Error(err))
		response.Internal(c, "failed to load abstract")
		return nil, false
	}
	return a, true
}

func (h *Handler) notifyDecision(c *gin.Context, a *models.Abstract, note string) {
	if h.queue == nil || h.users == nil {
		return
	}
	author, err := h.users.GetByID(c.Request.Context(), a.UserID)
	if err != nil {
		h.logger.Warn("decision email skipped, author lookup failed", zap.Error(err))
		return
	}
	err = h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      models.EmailTypeAbstractDecision,
		RecipientEmail: author.Email,
		RecipientName:  author.FullName,
		Subject:        "Decision on your abstract",
		BodyHTML: "<p>The status of your abstract \"" + a.Title + "\" is now <b>" + string(a.Status) + "</b>.</p>" +
			noteParagraph(note),
	})
	if err != nil {
		h.logger.Warn("failed to queue decision email", zap.Error(err))
	}
}

func noteParagraph(note string) string {
	if note == "" {
		return ""
	}
	return "<p>Reviewer note: " + note + "</p>"
}
