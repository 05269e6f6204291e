package service

import (
	"context"

	"securecollab/internal/domain"
)

// Интерфейсы хранилищ метаданных. Реализации на sqlx живут в
// internal/repository; в тестах подставляются in-memory варианты.

type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	GetByID(ctx context.Context, fileID int64) (*domain.File, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.File, error)
	ListSharedWith(ctx context.Context, userID int64) ([]domain.File, error)
	Delete(ctx context.Context, fileID int64) error
}

type GrantRepository interface {
	Upsert(ctx context.Context, grant *domain.ShareGrant) error
	Get(ctx context.Context, fileID, userID int64) (*domain.ShareGrant, error)
	Delete(ctx context.Context, fileID, userID int64) error
	ListByFile(ctx context.Context, fileID int64) ([]domain.ShareGrant, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
}
