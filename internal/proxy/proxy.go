package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

// Handler forwards /api/proxy/* to the conference backend. Status and body
// come back verbatim so the caller sees exactly what the backend said.
type Handler struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHandler(cfg config.BackendConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// Forward handles any method on /api/proxy/*path.
func (h *Handler) Forward(c *gin.Context) {
	target := h.baseURL + "/" + strings.TrimLeft(c.Param("path"), "/")
	if raw := c.Request.URL.RawQuery; raw != "" {
		target += "?" + raw
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := c.GetHeader("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.fail(c, err)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Warn("proxy request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Param("path")),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Proxy error",
		"error":   err.Error(),
	})
}
