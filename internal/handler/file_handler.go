package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"securecollab/internal/auth"
	"securecollab/internal/domain"
	"securecollab/internal/service"
)

const maxUploadMemory = 32 << 20 // 32MB в памяти, остальное на диск

type FileHandler struct {
	fileService *service.FileService
	tempDir     string
}

type ListFilesResponse struct {
	Owned  []domain.File `json:"owned"`
	Shared []domain.File `json:"shared"`
}

func NewFileHandler(fileService *service.FileService, tempDir string) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		tempDir:     tempDir,
	}
}

// UploadFile принимает multipart-форму с полем file, сохраняет его во
// временный файл и передает сервису. Временный файл сервис удаляет сам.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.ActorID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "file is required"})
		return
	}
	defer file.Close()

	// Имя временного файла уникально на запрос
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename)))
	if err := saveToTemp(file, tempPath); err != nil {
		log.Printf("failed to save upload to temp: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
		return
	}

	record, err := h.fileService.Upload(r.Context(), actorID, tempPath, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// DownloadFile отдает расшифрованное содержимое файла. Расшифрованная
// копия живет только в пределах запроса.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
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

	record, plaintextPath, err := h.fileService.Download(r.Context(), actorID, fileID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.RemoveAll(filepath.Dir(plaintextPath))

	w.Header().Set("Content-Type", record.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	http.ServeFile(w, r, plaintextPath)
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
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

	if err := h.fileService.Delete(r.Context(), actorID, fileID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	actorID, err := auth.ActorID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
		return
	}

	owned, shared, err := h.fileService.ListAccessible(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	if owned == nil {
		owned = []domain.File{}
	}
	if shared == nil {
		shared = []domain.File{}
	}

	writeJSON(w, http.StatusOK, ListFilesResponse{Owned: owned, Shared: shared})
}

func parseFileID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func saveToTemp(src io.Reader, tempPath string) error {
	out, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tempPath)
		return err
	}

	return out.Close()
}
