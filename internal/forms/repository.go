package forms

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

// Repository handles form schema persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a forms repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByAttendanceType returns the stored schema for an attendance type.
func (r *Repository) GetByAttendanceType(ctx context.Context, attendanceType string) (*models.FormSchema, error) {
	const q = `SELECT id, attendence_type, groups, created_at, updated_at FROM form_schemas WHERE attendence_type = $1`
	var s models.FormSchema
	err := r.pool.QueryRow(ctx, q, attendanceType).Scan(&s.ID, &s.AttendanceType, &s.Groups, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert stores or replaces the schema for an attendance type.
func (r *Repository) Upsert(ctx context.Context, attendanceType string, groups json.RawMessage) (*models.FormSchema, error) {
	const q = `INSERT INTO form_schemas (id, attendence_type, groups)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (attendence_type) DO UPDATE SET groups = EXCLUDED.groups, updated_at = NOW()
		RETURNING id, attendence_type, groups, created_at, updated_at`
	var s models.FormSchema
	err := r.pool.QueryRow(ctx, q, attendanceType, groups).Scan(&s.ID, &s.AttendanceType, &s.Groups, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
