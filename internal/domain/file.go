package domain

import (
	"time"
)

// File представляет запись о зашифрованном файле. Файлы неизменяемы:
// повторная загрузка создает новую запись, а не новую версию.
type File struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	StorageKey string    `json:"-" db:"storage_key"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	MIMEType   string    `json:"mime_type" db:"mime_type"`
	OwnerID    int64     `json:"owner_id" db:"owner_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
