package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"securecollab/internal/crypto"
	"securecollab/internal/domain"
	"securecollab/internal/storage"
)

const maxFileSize = 100 * 1024 * 1024 // 100MB максимальный размер файла

// Разрешенные расширения загружаемых файлов
var allowedExtensions = map[string]bool{
	".txt": true, ".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".zip": true,
}

// FileService связывает шифрование, физическое хранилище и учет прав
// доступа. Порядок внутри каждой операции фиксирован: проверка прав
// выполняется до любого обращения к хранилищу или криптографии, временные
// файлы подчищаются безусловно, а при удалении блоб убирается раньше
// записи в базе - сбой оставляет запись на месте и операцию можно
// безопасно повторить.
type FileService struct {
	fileRepo          FileRepository
	permissionService *PermissionService
	activityService   *ActivityService
	blobStore         storage.BlobStore
	fileCrypto        *crypto.FileCrypto
	tempDir           string
}

func NewFileService(
	fileRepo FileRepository,
	permissionService *PermissionService,
	activityService *ActivityService,
	blobStore storage.BlobStore,
	fileCrypto *crypto.FileCrypto,
	tempDir string,
) *FileService {
	return &FileService{
		fileRepo:          fileRepo,
		permissionService: permissionService,
		activityService:   activityService,
		blobStore:         blobStore,
		fileCrypto:        fileCrypto,
		tempDir:           tempDir,
	}
}

// Upload шифрует локальный файл, помещает шифртекст в хранилище и создает
// запись о файле. Загрузка создает владение, поэтому предварительная
// проверка прав не нужна. Исходный plaintext и локальная зашифрованная
// копия удаляются в любом исходе.
func (s *FileService) Upload(
	ctx context.Context,
	actorID int64,
	localPath string,
	name string,
	mimeType string,
) (*domain.File, error) {
	// plaintext не должен пережить запрос
	defer os.Remove(localPath)

	if err := validateUpload(localPath, name); err != nil {
		return nil, err
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	encryptedPath, err := s.fileCrypto.EncryptFile(localPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(encryptedPath)

	encryptedInfo, err := os.Stat(encryptedPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat encrypted file: %v", domain.ErrStorage, err)
	}

	storageKey, err := s.blobStore.Put(ctx, encryptedPath, actorID)
	if err != nil {
		return nil, err
	}

	file := &domain.File{
		Name:       name,
		StorageKey: storageKey,
		SizeBytes:  encryptedInfo.Size(), // размер шифртекста, как он лежит в хранилище
		MIMEType:   mimeType,
		OwnerID:    actorID,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Компенсирующее удаление, чтобы не оставить блоб-сироту без записи
		if deleteErr := s.blobStore.Delete(ctx, storageKey); deleteErr != nil {
			log.Printf("failed to delete blob %s after db error: %v", storageKey, deleteErr)
		}
		return nil, fmt.Errorf("%w: failed to persist file record: %v", domain.ErrStorage, err)
	}

	s.activityService.Record(ctx, domain.ActivityUpload, file.ID, actorID,
		fmt.Sprintf("uploaded %s", file.Name))

	return file, nil
}

// Download возвращает запись о файле и путь к расшифрованной копии во
// временном каталоге запроса. Вызывающий код отдает файл клиенту и
// удаляет каталог.
func (s *FileService) Download(ctx context.Context, actorID int64, fileID int64) (*domain.File, string, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, "", err
	}

	ok, err := s.permissionService.Check(ctx, fileID, actorID, domain.PermissionRead)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: no read access to file %d", domain.ErrForbidden, fileID)
	}

	// Уникальный подкаталог на запрос, чтобы конкурентные скачивания
	// одного файла не пересекались
	scratchDir := filepath.Join(s.tempDir, uuid.New().String())

	encryptedPath, err := s.blobStore.Get(ctx, file.StorageKey, scratchDir)
	if err != nil {
		os.RemoveAll(scratchDir)
		return nil, "", err
	}

	decryptedPath, err := s.fileCrypto.DecryptFile(encryptedPath)
	if err != nil {
		os.RemoveAll(scratchDir)
		if errors.Is(err, domain.ErrIntegrity) {
			log.Printf("SECURITY: integrity check failed for file %d (key %s)", fileID, file.StorageKey)
		}
		return nil, "", err
	}

	// Зашифрованная копия больше не нужна
	os.Remove(encryptedPath)

	s.activityService.Record(ctx, domain.ActivityDownload, fileID, actorID,
		fmt.Sprintf("downloaded %s", file.Name))

	return file, decryptedPath, nil
}

// Share выдает или обновляет грант на файл. Управлять грантами может
// владелец либо грантополучатель с уровнем write.
func (s *FileService) Share(
	ctx context.Context,
	actorID int64,
	fileID int64,
	granteeID int64,
	permission domain.Permission,
) (*domain.ShareGrant, error) {
	if _, err := s.fileRepo.GetByID(ctx, fileID); err != nil {
		return nil, err
	}

	ok, err := s.permissionService.CanManageGrants(ctx, fileID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no right to share file %d", domain.ErrForbidden, fileID)
	}

	grant, err := s.permissionService.Grant(ctx, fileID, granteeID, permission)
	if err != nil {
		return nil, err
	}

	s.activityService.Record(ctx, domain.ActivityShare, fileID, actorID,
		fmt.Sprintf("shared with user %d (%s)", granteeID, permission))

	return grant, nil
}

// Revoke отзывает грант. Отзыв доступен только владельцу: write-грант
// позволяет делиться, но не лишать доступа других.
func (s *FileService) Revoke(ctx context.Context, actorID int64, fileID int64, granteeID int64) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if file.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may revoke access", domain.ErrForbidden)
	}

	if err := s.permissionService.Revoke(ctx, fileID, granteeID); err != nil {
		return err
	}

	s.activityService.Record(ctx, domain.ActivityRevoke, fileID, actorID,
		fmt.Sprintf("revoked access for user %d", granteeID))

	return nil
}

// Delete удаляет файл: сначала блоб, затем запись вместе с грантами и
// журналом. Гранты права на удаление не дают.
func (s *FileService) Delete(ctx context.Context, actorID int64, fileID int64) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if file.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may delete a file", domain.ErrForbidden)
	}

	// Блоб удаляется первым: если здесь сбой, запись остается и операцию
	// можно повторить. Отсутствующий блоб ошибкой не считается.
	if err := s.blobStore.Delete(ctx, file.StorageKey); err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	// Запись в activities каскадно удалена вместе с файлом
	log.Printf("file %d (%s) deleted by owner %d", fileID, file.Name, actorID)

	return nil
}

// ListAccessible возвращает файлы пользователя: собственные и выданные
// ему по грантам
func (s *FileService) ListAccessible(ctx context.Context, actorID int64) (owned, shared []domain.File, err error) {
	owned, err = s.fileRepo.ListByOwner(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	shared, err = s.fileRepo.ListSharedWith(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	return owned, shared, nil
}

// ListGrants возвращает список грантов файла для представления
// "с кем поделились". Доступен владельцу и любому грантополучателю.
func (s *FileService) ListGrants(ctx context.Context, actorID int64, fileID int64) ([]domain.ShareGrant, error) {
	if _, err := s.fileRepo.GetByID(ctx, fileID); err != nil {
		return nil, err
	}

	ok, err := s.permissionService.Check(ctx, fileID, actorID, domain.PermissionRead)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no access to file %d", domain.ErrForbidden, fileID)
	}

	return s.permissionService.ListGrants(ctx, fileID)
}

func validateUpload(localPath string, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: file type %q is not allowed", domain.ErrValidation, ext)
	}

	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: upload source %s", domain.ErrNotFound, localPath)
		}
		return fmt.Errorf("%w: failed to stat upload: %v", domain.ErrStorage, err)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: empty file", domain.ErrValidation)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, maxFileSize)
	}

	return nil
}
