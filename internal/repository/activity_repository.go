package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"securecollab/internal/domain"
)

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	query := `
        INSERT INTO activities (id, type, file_id, user_id, details)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		activity.ID,
		activity.Type,
		activity.FileID,
		activity.UserID,
		activity.Details,
	).Scan(&activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity record: %w", err)
	}

	return nil
}

func (r *ActivityRepository) ListByFile(ctx context.Context, fileID int64) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := `SELECT * FROM activities WHERE file_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &activities, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}
