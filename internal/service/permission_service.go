package service

import (
	"context"
	"errors"
	"fmt"

	"securecollab/internal/domain"
)

// PermissionService ведет учет выданных прав доступа к файлам.
// Владелец файла имеет полный неявный доступ и никогда не фигурирует
// в грантах.
type PermissionService struct {
	grantRepo GrantRepository
	fileRepo  FileRepository
}

func NewPermissionService(grantRepo GrantRepository, fileRepo FileRepository) *PermissionService {
	return &PermissionService{
		grantRepo: grantRepo,
		fileRepo:  fileRepo,
	}
}

// Grant выдает или обновляет грант. Повторная выдача на ту же пару
// (файл, пользователь) обновляет уровень доступа, а не дублирует запись.
// Попытка выдать грант владельцу отклоняется: его права не выражаются
// грантами и не могут быть ими понижены.
func (s *PermissionService) Grant(
	ctx context.Context,
	fileID int64,
	granteeID int64,
	permission domain.Permission,
) (*domain.ShareGrant, error) {
	if !permission.Valid() {
		return nil, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, permission)
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if file.OwnerID == granteeID {
		return nil, fmt.Errorf("%w: owner cannot be a grantee", domain.ErrInvalidGrant)
	}

	grant := &domain.ShareGrant{
		FileID:     fileID,
		UserID:     granteeID,
		Permission: permission,
	}

	if err := s.grantRepo.Upsert(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to save grant: %w", err)
	}

	return grant, nil
}

// Revoke отзывает грант. Доступ владельца через этот путь не отзывается.
func (s *PermissionService) Revoke(ctx context.Context, fileID int64, granteeID int64) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if file.OwnerID == granteeID {
		return fmt.Errorf("%w: owner access is not revocable", domain.ErrForbidden)
	}

	return s.grantRepo.Delete(ctx, fileID, granteeID)
}

// Check проверяет, достаточен ли доступ пользователя для операции.
// Отсутствие доступа - это false, а не ошибка: в ошибку его переводит
// граница сервиса.
func (s *PermissionService) Check(
	ctx context.Context,
	fileID int64,
	actorID int64,
	required domain.Permission,
) (bool, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return false, err
	}

	// Владелец имеет полные права
	if file.OwnerID == actorID {
		return true, nil
	}

	grant, err := s.grantRepo.Get(ctx, fileID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up grant: %w", err)
	}

	return grant.Permission.Satisfies(required), nil
}

// CanManageGrants сообщает, может ли пользователь выдавать гранты:
// владелец или грантополучатель с уровнем write.
func (s *PermissionService) CanManageGrants(ctx context.Context, fileID int64, actorID int64) (bool, error) {
	return s.Check(ctx, fileID, actorID, domain.PermissionWrite)
}

// ListGrants возвращает гранты файла в порядке выдачи
func (s *PermissionService) ListGrants(ctx context.Context, fileID int64) ([]domain.ShareGrant, error) {
	return s.grantRepo.ListByFile(ctx, fileID)
}
