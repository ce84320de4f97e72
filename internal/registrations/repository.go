package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

var (
	ErrCategoryNotFound     = errors.New("registration category not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// Repository persists registration categories and registrations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCategories returns the categories for an attendance type, or all of
// them when attendanceType is empty.
func (r *Repository) ListCategories(ctx context.Context, attendanceType string) ([]models.RegistrationCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name_english, name_french, fee, attendence_type, early_payment_date, end_date, created_at
		FROM registration_categories
		WHERE ($1 = '' OR attendence_type = $1)
		ORDER BY name_english
	`, attendanceType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []models.RegistrationCategory
	for rows.Next() {
		var cat models.RegistrationCategory
		if err := rows.Scan(&cat.ID, &cat.NameEnglish, &cat.NameFrench, &cat.Fee,
			&cat.AttendanceType, &cat.EarlyPaymentDate, &cat.EndDate, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// GetCategory fetches one category.
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*models.RegistrationCategory, error) {
	var cat models.RegistrationCategory
	err := r.pool.QueryRow(ctx, `
		SELECT id, name_english, name_french, fee, attendence_type, early_payment_date, end_date, created_at
		FROM registration_categories WHERE id = $1
	`, id).Scan(&cat.ID, &cat.NameEnglish, &cat.NameFrench, &cat.Fee,
		&cat.AttendanceType, &cat.EarlyPaymentDate, &cat.EndDate, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// CreateCategory inserts a new ticket category.
func (r *Repository) CreateCategory(ctx context.Context, cat *models.RegistrationCategory) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO registration_categories (name_english, name_french, fee, attendence_type, early_payment_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, cat.NameEnglish, cat.NameFrench, cat.Fee, cat.AttendanceType, cat.EarlyPaymentDate, cat.EndDate).
		Scan(&cat.ID, &cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory replaces a category's fields.
func (r *Repository) UpdateCategory(ctx context.Context, cat *models.RegistrationCategory) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE registration_categories
		SET name_english = $2, name_french = $3, fee = $4, attendence_type = $5, early_payment_date = $6, end_date = $7
		WHERE id = $1
	`, cat.ID, cat.NameEnglish, cat.NameFrench, cat.Fee, cat.AttendanceType, cat.EarlyPaymentDate, cat.EndDate)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM registration_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CreateRegistration inserts a completed registration.
func (r *Repository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if reg.Answers == nil {
		reg.Answers = json.RawMessage("[]")
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO registrations
			(user_id, category_id, attendence_type, user_language, accompanied, answers,
			 order_id, payment_token, payment_session, acknowledgment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, reg.UserID, reg.CategoryID, reg.AttendanceType, reg.UserLanguage, reg.Accompanied, reg.Answers,
		reg.OrderID, reg.PaymentToken, reg.PaymentSession, reg.Acknowledgment).
		Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// GetRegistration fetches one registration.
func (r *Repository) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, category_id, attendence_type, user_language, accompanied, answers,
		       order_id, payment_token, payment_session, acknowledgment, created_at, updated_at
		FROM registrations WHERE id = $1
	`, id).Scan(&reg.ID, &reg.UserID, &reg.CategoryID, &reg.AttendanceType, &reg.UserLanguage,
		&reg.Accompanied, &reg.Answers, &reg.OrderID, &reg.PaymentToken, &reg.PaymentSession,
		&reg.Acknowledgment, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// ListRegistrations returns registrations newest first, optionally
// filtered by attendance type.
func (r *Repository) ListRegistrations(ctx context.Context, attendanceType string, limit, offset int) ([]models.Registration, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, category_id, attendence_type, user_language, accompanied, answers,
		       order_id, payment_token, payment_session, acknowledgment, created_at, updated_at
		FROM registrations
		WHERE ($1 = '' OR attendence_type = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, attendanceType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var out []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.UserID, &reg.CategoryID, &reg.AttendanceType, &reg.UserLanguage,
			&reg.Accompanied, &reg.Answers, &reg.OrderID, &reg.PaymentToken, &reg.PaymentSession,
			&reg.Acknowledgment, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// CountSince supports the staff dashboard.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}
