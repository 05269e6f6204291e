package domain

import (
	"time"
)

// Permission определяет уровень доступа к файлу для грантополучателя.
// Владелец в грантах не фигурирует - его права полные и неявные.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// Valid проверяет, что уровень доступа входит в допустимый набор
func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// Satisfies проверяет, достаточен ли уровень доступа для требуемого:
// write покрывает read и write, read покрывает только read
func (p Permission) Satisfies(required Permission) bool {
	if p == PermissionWrite {
		return required == PermissionRead || required == PermissionWrite
	}
	return p == PermissionRead && required == PermissionRead
}

// ShareGrant представляет выданный доступ к файлу.
// На пару (файл, пользователь) существует не более одного гранта.
type ShareGrant struct {
	ID         int64      `json:"id" db:"id"`
	FileID     int64      `json:"file_id" db:"file_id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	Permission Permission `json:"permission" db:"permission"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
