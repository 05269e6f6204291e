package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"securecollab/internal/domain"
)

// In-memory реализации репозиториев для тестов сервисного слоя.
// Семантика повторяет sqlx-реализации: ErrNotFound для отсутствующих
// записей, upsert по паре (file_id, user_id), порядок грантов по выдаче.
type memStore struct {
	mu         sync.Mutex
	fileSeq    int64
	grantSeq   int64
	files      map[int64]domain.File
	grants     []domain.ShareGrant
	activities []domain.Activity
}

func newMemStore() *memStore {
	return &memStore{files: make(map[int64]domain.File)}
}

func (m *memStore) Create(ctx context.Context, file *domain.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileSeq++
	file.ID = m.fileSeq
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt
	m.files[file.ID] = *file
	return nil
}

func (m *memStore) GetByID(ctx context.Context, fileID int64) (*domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: file %d", domain.ErrNotFound, fileID)
	}
	return &file, nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID int64) ([]domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var files []domain.File
	for id := int64(1); id <= m.fileSeq; id++ {
		if file, ok := m.files[id]; ok && file.OwnerID == ownerID {
			files = append(files, file)
		}
	}
	return files, nil
}

func (m *memStore) ListSharedWith(ctx context.Context, userID int64) ([]domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var files []domain.File
	for _, grant := range m.grants {
		if grant.UserID != userID {
			continue
		}
		if file, ok := m.files[grant.FileID]; ok {
			files = append(files, file)
		}
	}
	return files, nil
}

func (m *memStore) Delete(ctx context.Context, fileID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[fileID]; !ok {
		return fmt.Errorf("%w: file %d", domain.ErrNotFound, fileID)
	}
	delete(m.files, fileID)

	kept := m.grants[:0]
	for _, grant := range m.grants {
		if grant.FileID != fileID {
			kept = append(kept, grant)
		}
	}
	m.grants = kept

	keptActs := m.activities[:0]
	for _, act := range m.activities {
		if act.FileID != fileID {
			keptActs = append(keptActs, act)
		}
	}
	m.activities = keptActs

	return nil
}

func (m *memStore) Upsert(ctx context.Context, grant *domain.ShareGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.grants {
		if m.grants[i].FileID == grant.FileID && m.grants[i].UserID == grant.UserID {
			m.grants[i].Permission = grant.Permission
			grant.ID = m.grants[i].ID
			grant.CreatedAt = m.grants[i].CreatedAt
			return nil
		}
	}

	m.grantSeq++
	grant.ID = m.grantSeq
	grant.CreatedAt = time.Now()
	m.grants = append(m.grants, *grant)
	return nil
}

func (m *memStore) Get(ctx context.Context, fileID, userID int64) (*domain.ShareGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, grant := range m.grants {
		if grant.FileID == fileID && grant.UserID == userID {
			g := grant
			return &g, nil
		}
	}
	return nil, fmt.Errorf("%w: grant for file %d user %d", domain.ErrNotFound, fileID, userID)
}

func (m *memStore) DeleteGrant(ctx context.Context, fileID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, grant := range m.grants {
		if grant.FileID == fileID && grant.UserID == userID {
			m.grants = append(m.grants[:i], m.grants[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: grant for file %d user %d", domain.ErrNotFound, fileID, userID)
}

func (m *memStore) ListByFile(ctx context.Context, fileID int64) ([]domain.ShareGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var grants []domain.ShareGrant
	for _, grant := range m.grants {
		if grant.FileID == fileID {
			grants = append(grants, grant)
		}
	}
	return grants, nil
}

// grantStore адаптирует memStore под интерфейс GrantRepository:
// имена методов Delete у файлов и грантов различаются
type grantStore struct {
	*memStore
}

func (g grantStore) Delete(ctx context.Context, fileID, userID int64) error {
	return g.DeleteGrant(ctx, fileID, userID)
}

func (m *memStore) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity.CreatedAt = time.Now()
	m.activities = append(m.activities, *activity)
	return nil
}

type activityStore struct {
	*memStore
}

func (a activityStore) Create(ctx context.Context, activity *domain.Activity) error {
	return a.CreateActivity(ctx, activity)
}
