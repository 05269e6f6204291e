package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"securecollab/internal/domain"
)

type GrantRepository struct {
	db *sqlx.DB
}

func NewGrantRepository(db *sqlx.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Upsert создает грант или обновляет уровень доступа существующего.
// Уникальный индекс по (file_id, user_id) гарантирует один грант на пару
// даже при конкурентных запросах.
func (r *GrantRepository) Upsert(ctx context.Context, grant *domain.ShareGrant) error {
	query := `
        INSERT INTO file_shares (file_id, user_id, permission)
        VALUES ($1, $2, $3)
        ON CONFLICT (file_id, user_id)
        DO UPDATE SET permission = EXCLUDED.permission
        RETURNING id, created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		grant.FileID,
		grant.UserID,
		grant.Permission,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert grant: %w", err)
	}

	return nil
}

func (r *GrantRepository) Get(ctx context.Context, fileID, userID int64) (*domain.ShareGrant, error) {
	var grant domain.ShareGrant
	query := `SELECT * FROM file_shares WHERE file_id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, &grant, query, fileID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: grant for file %d user %d", domain.ErrNotFound, fileID, userID)
		}
		return nil, fmt.Errorf("failed to get grant: %w", err)
	}

	return &grant, nil
}

func (r *GrantRepository) Delete(ctx context.Context, fileID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM file_shares WHERE file_id = $1 AND user_id = $2`,
		fileID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: grant for file %d user %d", domain.ErrNotFound, fileID, userID)
	}

	return nil
}

func (r *GrantRepository) ListByFile(ctx context.Context, fileID int64) ([]domain.ShareGrant, error) {
	var grants []domain.ShareGrant
	query := `SELECT * FROM file_shares WHERE file_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &grants, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	return grants, nil
}
