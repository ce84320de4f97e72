package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/response"
)

// Handler serves the staff dashboard summary.
type Handler struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(pool *pgxpool.Pool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pool: pool, logger: logger}
}

// SummaryResponse is the JSON shape for the dashboard tiles.
type SummaryResponse struct {
	Registrations      int            `json:"registrations"`
	PaidRegistrations  int            `json:"paid_registrations"`
	DelegatesInvited   int            `json:"delegates_invited"`
	DelegatesConverted int            `json:"delegates_converted"`
	AbstractsByStatus  map[string]int `json:"abstracts_by_status"`
	PaymentsCompleted  int            `json:"payments_completed"`
	PaymentsFailed     int            `json:"payments_failed"`
	EmailsSent         int            `json:"emails_sent"`
}

// Summary handles GET /analytics/summary (staff).
func (h *Handler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	out := SummaryResponse{AbstractsByStatus: map[string]int{}}

	err := h.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM registrations),
			(SELECT COUNT(*) FROM registrations WHERE order_id <> ''),
			(SELECT COUNT(*) FROM delegates),
			(SELECT COUNT(*) FROM delegates WHERE status = 'registered'),
			(SELECT COUNT(*) FROM payment_attempts WHERE status = 'completed'),
			(SELECT COUNT(*) FROM payment_attempts WHERE status IN ('failed', 'cancelled')),
			(SELECT COUNT(*) FROM email_logs WHERE status = 'sent')
	`).Scan(&out.Registrations, &out.PaidRegistrations, &out.DelegatesInvited,
		&out.DelegatesConverted, &out.PaymentsCompleted, &out.PaymentsFailed, &out.EmailsSent)
	if err != nil {
		h.logger.Error("dashboard counts failed", zap.Error(err))
		response.Internal(c, "failed to load summary")
		return
	}

	rows, err := h.pool.Query(ctx, `SELECT status, COUNT(*) FROM abstracts GROUP BY status`)
	if err != nil {
		h.logger.Error("abstract counts failed", zap.Error(err))
		response.Internal(c, "failed to load summary")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			response.Internal(c, "failed to load summary")
			return
		}
		out.AbstractsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		response.Internal(c, "failed to load summary")
		return
	}

	response.OK(c, out)
}
