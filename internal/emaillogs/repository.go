package emaillogs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create records an outbound email as pending and fills in the id.
func (r *Repository) Create(ctx context.Context, log *models.EmailLog) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (delegate_id, email_type, recipient_email, subject)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`, log.DelegateID, log.EmailType, log.RecipientEmail, log.Subject).
		Scan(&log.ID, &log.Status, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

// MarkSent records successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_logs SET status = $2, sent_at = NOW(), error_message = '' WHERE id = $1
	`, id, models.EmailLogStatusSent)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1
	`, id, models.EmailLogStatusFailed, reason)
	if err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}
	return nil
}

// List returns email logs newest first, optionally filtered by type,
// status or delegate.
func (r *Repository) List(ctx context.Context, emailType, status string, delegateID *uuid.UUID, limit, offset int) ([]models.EmailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, delegate_id, email_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM email_logs
		WHERE ($1 = '' OR email_type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::uuid IS NULL OR delegate_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, emailType, status, delegateID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}
	defer rows.Close()

	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.DelegateID, &el.EmailType, &el.RecipientEmail,
			&el.Subject, &el.Status, &el.SentAt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
