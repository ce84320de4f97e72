package changelog

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler serves the staff changelog viewer.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /changelog?entity=&entity_id=&action=&limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		Entity: c.Query("entity"),
		Action: c.Query("action"),
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid entity_id")
			return
		}
		f.EntityID = &id
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	entries, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("changelog list failed", zap.Error(err))
		response.Internal(c, "failed to load changelog")
		return
	}
	response.OK(c, gin.H{"entries": entries, "count": len(entries)})
}
