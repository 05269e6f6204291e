package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"securecollab/internal/auth"
	"securecollab/internal/domain"
	"securecollab/internal/service"
)

type ShareHandler struct {
	fileService *service.FileService
}

type CreateShareRequest struct {
	FileID     int64             `json:"file_id"`
	UserID     int64             `json:"user_id"`
	Permission domain.Permission `json:"permission"`
}

func NewShareHandler(fileService *service.FileService) *ShareHandler {
	return &ShareHandler{fileService: fileService}
}

// CreateShare выдает или обновляет грант на файл
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.ActorID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	if req.Permission == "" {
		req.Permission = domain.PermissionRead
	}

	grant, err := h.fileService.Share(r.Context(), actorID, req.FileID, req.UserID, req.Permission)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, grant)
}

// RevokeShare отзывает грант пользователя на файл
func (h *ShareHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.ActorID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	fileID, err := parseFileID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid file id"})
		return
	}

	granteeID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid user id"})
		return
	}

	if err := h.fileService.Revoke(r.Context(), actorID, fileID, granteeID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "access revoked"})
}

// ListGrants возвращает список грантов файла
func (h *ShareHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.ActorID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	fileID, err := parseFileID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid file id"})
		return
	}

	grants, err := h.fileService.ListGrants(r.Context(), actorID, fileID)
	if err != nil {
		writeError(w, err)
		return
	}

	if grants == nil {
		grants = []domain.ShareGrant{}
	}

	writeJSON(w, http.StatusOK, grants)
}
