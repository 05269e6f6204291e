package storage

import (
	"context"
)

// BlobStore определяет интерфейс хранилища зашифрованных блобов.
// Ключи непрозрачны и никогда не переиспользуются. Проверок прав доступа
// на этом уровне нет - вся авторизация выполняется уровнем выше, поэтому
// бэкенды (локальный диск, S3) взаимозаменяемы без изменения логики
// безопасности.
type BlobStore interface {
	// Put копирует локальный файл в хранилище и возвращает ключ вида
	// user_{ownerID}/{uuid}_{basename}
	Put(ctx context.Context, localPath string, ownerID int64) (string, error)

	// Get копирует блоб в destDir и возвращает путь к локальной копии.
	// Возвращает domain.ErrNotFound, если ключ не разрешается в блоб.
	Get(ctx context.Context, storageKey string, destDir string) (string, error)

	// Delete удаляет блоб. Идемпотентен: удаление несуществующего ключа
	// не является ошибкой, чтобы повтор после частичного сбоя был безопасен.
	Delete(ctx context.Context, storageKey string) error
}
