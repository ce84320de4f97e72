package changelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

// Repository appends to and reads the portal's audit log. Entries are
// never updated or deleted.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// Record appends one entry. Audit failures are logged, not propagated, so
// a changelog outage never blocks the mutation it describes.
func (r *Repository) Record(ctx context.Context, entity string, entityID uuid.UUID, action string, actorID *uuid.UUID, detail any) {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			r.logger.Error("failed to marshal changelog detail", zap.Error(err))
			detailJSON = nil
		}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO changelog (entity, entity_id, action, actor_id, detail)
		VALUES ($1, $2, $3, $4, $5)
	`, entity, entityID, action, actorID, detailJSON)
	if err != nil {
		r.logger.Error("failed to record changelog entry",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// Filter narrows a changelog listing.
type Filter struct {
	Entity   string
	EntityID *uuid.UUID
	Action   string
	Limit    int
	Offset   int
}

// List returns entries newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.ChangelogEntry, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity, entity_id, action, actor_id, detail, created_at
		FROM changelog
		WHERE ($1 = '' OR entity = $1)
		  AND ($2::uuid IS NULL OR entity_id = $2)
		  AND ($3 = '' OR action = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, f.Entity, f.EntityID, f.Action, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list changelog: %w", err)
	}
	defer rows.Close()

	var out []models.ChangelogEntry
	for rows.Next() {
		var e models.ChangelogEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.ActorID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan changelog entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
