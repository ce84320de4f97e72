package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

// ErrAttemptNotFound is returned when no payment attempt matches.
var ErrAttemptNotFound = errors.New("payment attempt not found")

// Repository persists payment attempts.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateAttempt records a freshly opened session as pending.
func (r *Repository) CreateAttempt(ctx context.Context, session *Session, req InitRequest, categoryID *string) (*models.PaymentAttempt, error) {
	attempt := &models.PaymentAttempt{
		OrderID:       session.OrderID,
		SessionID:     session.SessionID,
		Token:         session.Token,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Status:        models.PaymentStatusPending,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payment_attempts (order_id, session_id, token, amount, currency, category_id, customer_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, attempt.OrderID, attempt.SessionID, attempt.Token, attempt.Amount, attempt.Currency, categoryID, attempt.CustomerEmail).
		Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment attempt: %w", err)
	}
	return attempt, nil
}

// Resolve records the terminal outcome of a session.
func (r *Repository) Resolve(ctx context.Context, sessionID, status, transactionID, failureReason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_attempts
		SET status = $2, transaction_id = $3, failure_reason = $4, resolved_at = NOW()
		WHERE session_id = $1 AND status = 'pending'
	`, sessionID, status, transactionID, failureReason)
	if err != nil {
		return fmt.Errorf("failed to resolve payment attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// GetBySessionID fetches one attempt by its gateway session id.
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentAttempt, error) {
	return r.get(ctx, `WHERE session_id = $1`, sessionID)
}

// GetCompletedOrder returns the completed attempt for an order, if any.
// Registration submission uses this to verify the payment fields a client
// hands back.
func (r *Repository) GetCompletedOrder(ctx context.Context, orderID string) (*models.PaymentAttempt, error) {
	return r.get(ctx, `WHERE order_id = $1 AND status = 'completed'`, orderID)
}

func (r *Repository) get(ctx context.Context, where string, arg any) (*models.PaymentAttempt, error) {
	var a models.PaymentAttempt
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, session_id, token, amount, currency, category_id,
		       customer_email, status, transaction_id, failure_reason, resolved_at, created_at
		FROM payment_attempts `+where,
		arg).Scan(
		&a.ID, &a.OrderID, &a.SessionID, &a.Token, &a.Amount, &a.Currency, &a.CategoryID,
		&a.CustomerEmail, &a.Status, &a.TransactionID, &a.FailureReason, &a.ResolvedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}
	return &a, nil
}

// ListByOrder returns every attempt made for an order, newest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]models.PaymentAttempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, session_id, token, amount, currency, category_id,
		       customer_email, status, transaction_id, failure_reason, resolved_at, created_at
		FROM payment_attempts
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.PaymentAttempt
	for rows.Next() {
		var a models.PaymentAttempt
		if err := rows.Scan(
			&a.ID, &a.OrderID, &a.SessionID, &a.Token, &a.Amount, &a.Currency, &a.CategoryID,
			&a.CustomerEmail, &a.Status, &a.TransactionID, &a.FailureReason, &a.ResolvedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
