package auth

import (
	"fmt"
	"net/http"
	"strconv"
)

// Идентификация выполняется внешним сервисом аутентификации: шлюз
// проверяет токен и проставляет доверенный заголовок с ID пользователя.
// Ядро этому значению доверяет полностью и само токены не разбирает.
const userIDHeader = "X-User-ID"

// ActorID извлекает ID аутентифицированного пользователя из запроса
func ActorID(r *http.Request) (int64, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return 0, fmt.Errorf("no %s header", userIDHeader)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s header: %w", userIDHeader, err)
	}

	return id, nil
}
