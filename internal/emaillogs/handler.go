package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler handles the staff email-log viewer.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /email-logs?type=&status=&delegate_id=&limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	var delegateID *uuid.UUID
	if raw := c.Query("delegate_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid delegate_id")
			return
		}
		delegateID = &id
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	logs, err := h.repo.List(c.Request.Context(), c.Query("type"), c.Query("status"), delegateID, limit, offset)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, gin.H{"logs": logs, "count": len(logs)})
}
