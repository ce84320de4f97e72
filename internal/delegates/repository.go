package delegates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

var (
	ErrDelegateNotFound   = errors.New("delegate not found")
	ErrInvitationNotFound = errors.New("invitation not found")
)

// Repository persists delegates and their invitation tokens.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a delegate as invited. An existing delegate with the same
// email is returned instead, so re-importing a list never duplicates.
func (r *Repository) Create(ctx context.Context, d *models.Delegate) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO delegates (email, first_name, last_name, status, invited_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, updated_at = NOW()
		RETURNING id, status, created_at, updated_at
	`, d.Email, d.FirstName, d.LastName, models.DelegateStatusInvited, d.InvitedBy).
		Scan(&d.ID, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create delegate: %w", err)
	}
	return nil
}

// GetByID fetches a single delegate.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delegate, error) {
	var d models.Delegate
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, status, invited_by, created_at, updated_at
		FROM delegates WHERE id = $1
	`, id).Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.Status, &d.InvitedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDelegateNotFound
		}
		return nil, fmt.Errorf("failed to get delegate: %w", err)
	}
	return &d, nil
}

// List returns delegates newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]models.Delegate, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, first_name, last_name, status, invited_by, created_at, updated_at
		FROM delegates
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegates: %w", err)
	}
	defer rows.Close()

	var out []models.Delegate
	for rows.Next() {
		var d models.Delegate
		if err := rows.Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.Status, &d.InvitedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delegate: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update changes a delegate's name fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.Delegate, error) {
	var d models.Delegate
	err := r.pool.QueryRow(ctx, `
		UPDATE delegates SET first_name = $2, last_name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, first_name, last_name, status, invited_by, created_at, updated_at
	`, id, firstName, lastName).
		Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.Status, &d.InvitedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDelegateNotFound
		}
		return nil, fmt.Errorf("failed to update delegate: %w", err)
	}
	return &d, nil
}

// Delete removes a delegate and, by cascade, its invitations.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delegates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delegate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDelegateNotFound
	}
	return nil
}

// MarkRegistered flips an invited delegate once their registration lands.
func (r *Repository) MarkRegistered(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE delegates SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, models.DelegateStatusRegistered)
	if err != nil {
		return fmt.Errorf("failed to mark delegate registered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDelegateNotFound
	}
	return nil
}

// CreateInvitation stores a fresh invitation token.
func (r *Repository) CreateInvitation(ctx context.Context, inv *models.DelegateInvitation) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO delegate_invitations (delegate_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, inv.DelegateID, inv.Token, inv.ExpiresAt).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetInvitationByToken looks up an invitation for registration-link validation.
func (r *Repository) GetInvitationByToken(ctx context.Context, token string) (*models.DelegateInvitation, error) {
	var inv models.DelegateInvitation
	err := r.pool.QueryRow(ctx, `
		SELECT id, delegate_id, token, expires_at, used_at, created_at
		FROM delegate_invitations WHERE token = $1
	`, token).Scan(&inv.ID, &inv.DelegateID, &inv.Token, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &inv, nil
}

// MarkInvitationUsed burns a token. Returns ErrInvitationNotFound when the
// token was already used.
func (r *Repository) MarkInvitationUsed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE delegate_invitations SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark invitation used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}
