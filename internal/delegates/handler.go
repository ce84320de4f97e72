package delegates

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/changelog"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler handles delegate management endpoints (staff only, except
// invitation validation which the registration page hits anonymously).
type Handler struct {
	repo    *Repository
	inviter *Inviter
	audit   *changelog.Repository
	logger  *zap.Logger
}

func NewHandler(repo *Repository, inviter *Inviter, audit *changelog.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, inviter: inviter, audit: audit, logger: logger}
}

// List handles GET /delegates?status=&limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	list, err := h.repo.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		h.logger.Error("list delegates failed", zap.Error(err))
		response.Internal(c, "failed to list delegates")
		return
	}
	response.OK(c, gin.H{"delegates": list, "count": len(list)})
}

// Get handles GET /delegates/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	d, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDelegateNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to get delegate")
		return
	}
	response.OK(c, d)
}

// Invite handles POST /delegates/invite, the single-invitation flow. Bulk
// import goes through the same Inviter, one row at a time.
func (h *Handler) Invite(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, first_name and last_name are required")
		return
	}

	inviter := h.inviter
	actorID, hasActor := middleware.UserID(c)
	if hasActor {
		inviter = inviter.WithActor(actorID)
	}

	delegate, err := inviter.InviteOne(c.Request.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		h.logger.Warn("invitation failed", zap.String("email", req.Email), zap.Error(err))
		response.BadRequest(c, err.Error())
		return
	}

	h.audit.Record(c.Request.Context(), "delegate", delegate.ID, "invited", actorPtr(actorID, hasActor), gin.H{
		"email": delegate.Email,
	})
	response.Created(c, delegate)
}

// Update handles PUT /delegates/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "first_name and last_name are required")
		return
	}

	d, err := h.repo.Update(c.Request.Context(), id, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, ErrDelegateNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to update delegate")
		return
	}

	actorID, hasActor := middleware.UserID(c)
	h.audit.Record(c.Request.Context(), "delegate", d.ID, "updated", actorPtr(actorID, hasActor), gin.H{
		"first_name": d.FirstName,
		"last_name":  d.LastName,
	})
	response.OK(c, d)
}

// Delete handles DELETE /delegates/:id. The client confirms before
// dispatching; the server just deletes.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrDelegateNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.Internal(c, "failed to delete delegate")
		return
	}

	actorID, hasActor := middleware.UserID(c)
	h.audit.Record(c.Request.Context(), "delegate", id, "deleted", actorPtr(actorID, hasActor), nil)
	response.NoContent(c)
}

// ValidateInvitation handles GET /invitations/:token. The registration
// page calls this before showing the wizard.
func (h *Handler) ValidateInvitation(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token required")
		return
	}

	inv, err := h.repo.GetInvitationByToken(c.Request.Context(), token)
	if err != nil {
		response.NotFound(c, "invalid or expired invitation")
		return
	}
	if inv.UsedAt != nil {
		response.BadRequest(c, "invitation already used")
		return
	}
	if time.Now().After(inv.ExpiresAt) {
		response.BadRequest(c, "invitation expired")
		return
	}

	d, err := h.repo.GetByID(c.Request.Context(), inv.DelegateID)
	if err != nil {
		response.NotFound(c, "delegate not found")
		return
	}
	response.OK(c, gin.H{
		"valid":      true,
		"delegate":   d,
		"expires_at": inv.ExpiresAt,
	})
}

func actorPtr(id uuid.UUID, ok bool) *uuid.UUID {
	if !ok {
		return nil
	}
	return &id
}
