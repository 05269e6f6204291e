package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"securecollab/internal/domain"
)

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
        INSERT INTO files (name, storage_key, size_bytes, mime_type, owner_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.Name,
		file.StorageKey,
		file.SizeBytes,
		file.MIMEType,
		file.OwnerID,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, fileID int64) (*domain.File, error) {
	var file domain.File
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, &file, query, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: file %d", domain.ErrNotFound, fileID)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.File, error) {
	var files []domain.File
	query := `SELECT * FROM files WHERE owner_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &files, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned files: %w", err)
	}

	return files, nil
}

// ListSharedWith возвращает файлы, к которым у пользователя есть грант
func (r *FileRepository) ListSharedWith(ctx context.Context, userID int64) ([]domain.File, error) {
	var files []domain.File
	query := `
        SELECT f.* FROM files f
        INNER JOIN file_shares s ON s.file_id = f.id
        WHERE s.user_id = $1
        ORDER BY s.created_at DESC`

	err := r.db.SelectContext(ctx, &files, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared files: %w", err)
	}

	return files, nil
}

// Delete удаляет запись о файле вместе с грантами и журналом активности.
// Каскад выполняется явной транзакцией, а не side-эффектом схемы.
func (r *FileRepository) Delete(ctx context.Context, fileID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_shares WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete file shares: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete file activities: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: file %d", domain.ErrNotFound, fileID)
	}

	return tx.Commit()
}
