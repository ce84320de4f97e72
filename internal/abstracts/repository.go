package abstracts

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
	ErrAbstractNotFound = errors.New("abstract not found")
	ErrCoauthorNotFound = errors.New("co-author not found")
)

const abstractColumns = `id, user_id, title, body, keywords, presentation_type, status, file_key, created_at, updated_at`

// Repository persists abstracts, comments, co-authors and status history.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAbstract(row pgx.Row) (*models.Abstract, error) {
	var a models.Abstract
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Body, &a.Keywords,
		&a.PresentationType, &a.Status, &a.FileKey, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAbstractNotFound
		}
		return nil, fmt.Errorf("failed to scan abstract: %w", err)
	}
	return &a, nil
}

// Create inserts a new abstract as pending.
func (r *Repository) Create(ctx context.Context, a *models.Abstract) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO abstracts (user_id, title, body, keywords, presentation_type, file_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at, updated_at
	`, a.UserID, a.Title, a.Body, a.Keywords, a.PresentationType, a.FileKey).
		Scan(&a.ID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create abstract: %w", err)
	}
	return nil
}

// GetByID fetches one abstract.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Abstract, error) {
	return scanAbstract(r.pool.QueryRow(ctx, `SELECT `+abstractColumns+` FROM abstracts WHERE id = $1`, id))
}

// List returns abstracts newest first, filtered by status and/or owner.
func (r *Repository) List(ctx context.Context, status string, userID *uuid.UUID, limit, offset int) ([]models.Abstract, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+abstractColumns+`
		FROM abstracts
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR user_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, status, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list abstracts: %w", err)
	}
	defer rows.Close()

	var out []models.Abstract
	for rows.Next() {
		var a models.Abstract
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Body, &a.Keywords,
			&a.PresentationType, &a.Status, &a.FileKey, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan abstract: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update replaces the author-editable fields.
func (r *Repository) Update(ctx context.Context, a *models.Abstract) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE abstracts
		SET title = $2, body = $3, keywords = $4, presentation_type = $5, file_key = $6, updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.Title, a.Body, a.Keywords, a.PresentationType, a.FileKey)
	if err != nil {
		return fmt.Errorf("failed to update abstract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAbstractNotFound
	}
	return nil
}

// Delete removes an abstract and its dependents by cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM abstracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete abstract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAbstractNotFound
	}
	return nil
}

// SetStatus transitions an abstract and records the change in history,
// atomically.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, to models.AbstractStatus, changedBy uuid.UUID, note string) (*models.Abstract, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var from models.AbstractStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM abstracts WHERE id = $1 FOR UPDATE`, id).Scan(&from); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAbstractNotFound
		}
		return nil, fmt.Errorf("failed to lock abstract: %w", err)
	}

	a, err := scanAbstract(tx.QueryRow(ctx, `
		UPDATE abstracts SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+abstractColumns,
		id, string(to)))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO abstract_status_history (abstract_id, changed_by, from_status, to_status, note)
		VALUES ($1, $2, $3, $4, $5)
	`, id, changedBy, string(from), string(to), note); err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	return a, nil
}

// StatusHistory returns the transitions for one abstract, oldest first.
func (r *Repository) StatusHistory(ctx context.Context, abstractID uuid.UUID) ([]models.AbstractStatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, abstract_id, changed_by, from_status, to_status, note, created_at
		FROM abstract_status_history
		WHERE abstract_id = $1
		ORDER BY created_at
	`, abstractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	var out []models.AbstractStatusChange
	for rows.Next() {
		var ch models.AbstractStatusChange
		if err := rows.Scan(&ch.ID, &ch.AbstractID, &ch.ChangedBy, &ch.FromStatus, &ch.ToStatus, &ch.Note, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// AddComment attaches a reviewer comment.
func (r *Repository) AddComment(ctx context.Context, cm *models.AbstractComment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO abstract_comments (abstract_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, cm.AbstractID, cm.AuthorID, cm.Content).Scan(&cm.ID, &cm.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// Comments lists an abstract's comments, oldest first.
func (r *Repository) Comments(ctx context.Context, abstractID uuid.UUID) ([]models.AbstractComment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, abstract_id, author_id, content, created_at
		FROM abstract_comments
		WHERE abstract_id = $1
		ORDER BY created_at
	`, abstractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []models.AbstractComment
	for rows.Next() {
		var cm models.AbstractComment
		if err := rows.Scan(&cm.ID, &cm.AbstractID, &cm.AuthorID, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// AddCoauthor attaches a co-author.
func (r *Repository) AddCoauthor(ctx context.Context, co *models.Coauthor) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO coauthors (abstract_id, first_name, last_name, email, affiliation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, co.AbstractID, co.FirstName, co.LastName, co.Email, co.Affiliation).Scan(&co.ID, &co.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add co-author: %w", err)
	}
	return nil
}

// Coauthors lists an abstract's co-authors.
func (r *Repository) Coauthors(ctx context.Context, abstractID uuid.UUID) ([]models.Coauthor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, abstract_id, first_name, last_name, email, affiliation, created_at
		FROM coauthors
		WHERE abstract_id = $1
		ORDER BY created_at
	`, abstractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list co-authors: %w", err)
	}
	defer rows.Close()

	var out []models.Coauthor
	for rows.Next() {
		var co models.Coauthor
		if err := rows.Scan(&co.ID, &co.AbstractID, &co.FirstName, &co.LastName, &co.Email, &co.Affiliation, &co.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan co-author: %w", err)
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

// DeleteCoauthor removes one co-author from an abstract.
func (r *Repository) DeleteCoauthor(ctx context.Context, abstractID, coauthorID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM coauthors WHERE id = $1 AND abstract_id = $2
	`, coauthorID, abstractID)
	if err != nil {
		return fmt.Errorf("failed to delete co-author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCoauthorNotFound
	}
	return nil
}
