package domain

import (
	"time"
)

// ActivityType описывает тип действия над файлом
type ActivityType string

const (
	ActivityUpload   ActivityType = "upload"
	ActivityDownload ActivityType = "download"
	ActivityShare    ActivityType = "share"
	ActivityRevoke   ActivityType = "revoke"
)

// Activity представляет запись журнала действий. Записи только добавляются
// и удаляются каскадом вместе с файлом.
type Activity struct {
	ID        string       `json:"id" db:"id"`
	Type      ActivityType `json:"type" db:"type"`
	FileID    int64        `json:"file_id" db:"file_id"`
	UserID    int64        `json:"user_id" db:"user_id"`
	Details   string       `json:"details" db:"details"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
