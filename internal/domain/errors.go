package domain

import "errors"

// Закрытый набор ошибок ядра. Сервисы оборачивают их через fmt.Errorf("%w"),
// хендлеры сопоставляют через errors.Is и переводят в HTTP-статусы.
var (
	// ErrForbidden - у пользователя нет прав на операцию (403)
	ErrForbidden = errors.New("access denied")

	// ErrNotFound - файл, грант или блоб не найдены (404)
	ErrNotFound = errors.New("not found")

	// ErrInvalidGrant - попытка выдать грант владельцу файла
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrIntegrity - криптографическая проверка не прошла: данные повреждены
	// или подделаны. Детали логируются, но не возвращаются клиенту.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrStorage - ошибка ввода-вывода при работе с хранилищем
	ErrStorage = errors.New("storage operation failed")

	// ErrValidation - некорректные входные данные (пустое имя, запрещенное
	// расширение, пустой файл)
	ErrValidation = errors.New("validation failed")
)
