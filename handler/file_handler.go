package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SOUROVSARKERTEC12/file-auth-management/common"
	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"

	"github.com/sirupsen/logrus"
)

// maxUploadSize caps multipart uploads at 10 MiB.
const maxUploadSize = 10 << 20

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload godoc
// @Summary      Upload a file
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "File to upload"
// @Success      201 {object} model.File
// @Failure      400 {object} common.AppError
// @Router       /api/files [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return common.NewAppError(http.StatusBadRequest, "File too large or malformed upload", err)
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "Missing file field", err)
	}
	defer f.Close()

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"file_name": header.Filename,
		"size":      header.Size,
	})
	log.Info("File upload request received")

	file, err := h.fileService.UploadFile(r.Context(), userID, header.Filename, f)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not upload file", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(file)
	return nil
}

// ListFiles godoc
// @Summary      List own files
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.File
// @Router       /api/files [get]
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	files, err := h.fileService.ListFiles(r.Context(), userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve files", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(files)
	return nil
}

// GetFile godoc
// @Summary      Get an own file
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "File ID"
// @Success      200 {object} model.File
// @Failure      404 {object} common.AppError
// @Router       /api/files/{id} [get]
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	file, err := h.fileService.GetFile(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return common.NewAppError(http.StatusNotFound, "File not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve file", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(file)
	return nil
}

// UpdateFile godoc
// @Summary      Update an own file's metadata
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "File ID"
// @Param        request body model.UpdateFileRequest true "Metadata payload"
// @Success      200 {object} model.File
// @Failure      400 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /api/files/{id} [patch]
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	var req model.UpdateFileRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	file, err := h.fileService.UpdateFile(r.Context(), userID, r.PathValue("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return common.NewAppError(http.StatusNotFound, "File not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not update file", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(file)
	return nil
}

// DeleteFile godoc
// @Summary      Delete an own file
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "File ID"
// @Success      204
// @Failure      404 {object} common.AppError
// @Router       /api/files/{id} [delete]
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	fileID := r.PathValue("id")
	if err := h.fileService.DeleteFile(r.Context(), userID, fileID); err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return common.NewAppError(http.StatusNotFound, "File not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete file", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
