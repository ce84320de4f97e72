package forms

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler handles form schema HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a forms handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// GetSchema handles GET /forms/:attendanceType. Returns the grouped inputs
// the registration wizard renders.
func (h *Handler) GetSchema(c *gin.Context) {
	attendanceType := c.Param("attendanceType")
	if attendanceType == "" {
		response.BadRequest(c, "attendance type required")
		return
	}
	schema, err := h.repo.GetByAttendanceType(c.Request.Context(), attendanceType)
	if err != nil {
		response.NotFound(c, "form not found")
		return
	}
	groups, err := DecodeGroups(schema.Groups)
	if err != nil {
		h.logger.Error("stored schema is malformed", zap.Error(err), zap.String("attendence_type", attendanceType))
		response.Internal(c, "failed to load form")
		return
	}
	response.OK(c, gin.H{
		"attendence_type": schema.AttendanceType,
		"groups":          groups,
	})
}

// UpdateSchema handles PUT /forms/:attendanceType (staff only). The body is
// the raw group array; it must decode before it is stored.
func (h *Handler) UpdateSchema(c *gin.Context) {
	attendanceType := c.Param("attendanceType")
	if attendanceType == "" {
		response.BadRequest(c, "attendance type required")
		return
	}
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	groups, err := DecodeGroups(raw)
	if err != nil {
		response.BadRequest(c, "invalid form schema: "+err.Error())
		return
	}
	if err := validateSchema(groups); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	schema, err := h.repo.Upsert(c.Request.Context(), attendanceType, raw)
	if err != nil {
		h.logger.Error("upsert form schema failed", zap.Error(err), zap.String("attendence_type", attendanceType))
		response.Internal(c, "failed to save form")
		return
	}
	response.OK(c, schema)
}

// validateSchema enforces the inputcode uniqueness invariant across groups.
func validateSchema(groups []FormInputGroup) error {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, e := range g.Entries {
			code := e.Input.InputCode
			if code == "" {
				return errEmptyInputCode
			}
			if _, dup := seen[code]; dup {
				return duplicateInputCodeError(code)
			}
			seen[code] = struct{}{}
		}
	}
	return nil
}
