package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"securecollab/internal/domain"
)

// LocalStore хранит блобы в каталогах под общим корнем, с шардированием
// по владельцу. Шардирование чисто организационное, не защитное.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Put(ctx context.Context, localPath string, ownerID int64) (string, error) {
	// UUID в ключе гарантирует уникальность даже при одинаковых именах файлов
	storageKey := fmt.Sprintf("user_%d/%s_%s", ownerID, uuid.New().String(), filepath.Base(localPath))

	destPath := filepath.Join(s.root, filepath.FromSlash(storageKey))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create owner directory: %v", domain.ErrStorage, err)
	}

	if err := copyFile(localPath, destPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: source file %s", domain.ErrNotFound, localPath)
		}
		return "", fmt.Errorf("%w: failed to store blob: %v", domain.ErrStorage, err)
	}

	return storageKey, nil
}

func (s *LocalStore) Get(ctx context.Context, storageKey string, destDir string) (string, error) {
	sourcePath, err := s.resolve(storageKey)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create destination directory: %v", domain.ErrStorage, err)
	}

	destPath := filepath.Join(destDir, filepath.Base(filepath.FromSlash(storageKey)))
	if err := copyFile(sourcePath, destPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: blob %s", domain.ErrNotFound, storageKey)
		}
		return "", fmt.Errorf("%w: failed to read blob: %v", domain.ErrStorage, err)
	}

	return destPath, nil
}

func (s *LocalStore) Delete(ctx context.Context, storageKey string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete blob: %v", domain.ErrStorage, err)
	}

	return nil
}

// resolve переводит ключ в путь под корнем хранилища. Ключи приходят из
// базы, но выход за пределы корня все равно отвергается.
func (s *LocalStore) resolve(storageKey string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(storageKey))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: invalid storage key", domain.ErrValidation)
	}
	return filepath.Join(s.root, cleaned), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return nil
}
