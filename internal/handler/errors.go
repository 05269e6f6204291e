package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"securecollab/internal/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError переводит ошибки ядра в HTTP-статусы. 403 возвращается для
// "файл есть, доступа нет", 404 - только для действительно отсутствующих
// записей. Внутренние детали ошибок хранилища и криптографии в ответ
// не попадают.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "access denied"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidGrant):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
