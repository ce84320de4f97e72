package payments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler exposes the payment endpoints.
type Handler struct {
	service   *Service
	simulator *SimulatedGateway // nil outside simulation mode
	logger    *zap.Logger
}

func NewHandler(service *Service, simulator *SimulatedGateway, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, simulator: simulator, logger: logger}
}

// Initialize handles POST /api/smartevent/Initialize-Payment. Amount and
// currency are required. The response keeps the legacy envelope older
// registration clients read: nested data block plus flattened aliases and
// an echo of the input.
func (h *Handler) Initialize(c *gin.Context) {
	var req InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount and currency are required")
		return
	}

	session, err := h.service.Initialize(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("payment initialization failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"message": "Failed to initialize payment",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"result":          "SUCCESS",
			"payment_session": session.SessionID,
			"token":           session.Token,
			"orderId":         session.OrderID,
		},
		"session_id":      session.SessionID,
		"payment_token":   session.Token,
		"order_id":        session.OrderID,
		"amount":          req.Amount,
		"currency":        req.Currency,
		"category_id":     req.CategoryID,
		"category_name":   req.CategoryName,
		"customer_email":  req.CustomerEmail,
		"customer_name":   req.CustomerName,
		"attendence_type": req.AttendanceType,
	})
}

// InitializeWrongMethod answers GET on the initialize route.
func (h *Handler) InitializeWrongMethod(c *gin.Context) {
	response.MethodNotAllowed(c, "use POST")
}

// Callback handles POST /api/payments/callback, the gateway's completion
// webhook. Late or duplicate callbacks are acknowledged and dropped.
func (h *Handler) Callback(c *gin.Context) {
	var req struct {
		SessionID       string `json:"session_id" binding:"required"`
		ResultIndicator string `json:"result_indicator"`
		Error           string `json:"error"`
		Cancelled       bool   `json:"cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "session_id is required")
		return
	}

	var delivered bool
	switch {
	case req.Cancelled:
		delivered = h.service.Cancel(req.SessionID)
	case req.Error != "":
		delivered = h.service.Fail(req.SessionID, req.Error)
	default:
		delivered = h.service.Complete(req.SessionID, req.ResultIndicator)
	}
	if !delivered {
		h.logger.Debug("callback for unknown or resolved session", zap.String("session_id", req.SessionID))
	}
	response.OK(c, gin.H{"delivered": delivered})
}

// Status handles GET /api/payments/:sessionID. Token is never exposed.
func (h *Handler) Status(c *gin.Context) {
	attempt, err := h.service.Attempt(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("payment status lookup failed", zap.Error(err))
		response.Internal(c, "failed to load payment")
		return
	}
	response.OK(c, attempt)
}

// AttemptsByOrder handles GET /payments/orders/:orderID (staff). Shows
// every attempt made against the order, including failed ones.
func (h *Handler) AttemptsByOrder(c *gin.Context) {
	attempts, err := h.service.AttemptsForOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.logger.Error("payment attempts lookup failed", zap.Error(err))
		response.Internal(c, "failed to load payment attempts")
		return
	}
	response.OK(c, gin.H{"attempts": attempts, "count": len(attempts)})
}

// SimulateComplete handles POST /api/payments/simulator/:sessionID/complete.
// Only routed in simulation mode.
func (h *Handler) SimulateComplete(c *gin.Context) {
	h.simulate(c, h.simulator.Complete)
}

// SimulateCancel handles POST /api/payments/simulator/:sessionID/cancel.
func (h *Handler) SimulateCancel(c *gin.Context) {
	h.simulate(c, h.simulator.Cancel)
}

func (h *Handler) simulate(c *gin.Context, trigger func(string) error) {
	if h.simulator == nil {
		response.NotFound(c, "simulation mode is not enabled")
		return
	}
	sessionID := c.Param("sessionID")
	if err := trigger(sessionID); err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.OK(c, gin.H{"session_id": sessionID})
}
