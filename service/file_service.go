package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/repository"
	"github.com/SOUROVSARKERTEC12/file-auth-management/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrFileNotFound = errors.New("file not found")

// FileService manages uploaded file metadata. The bytes live in the object
// storage collaborator; rows in the files table point at them.
type FileService struct {
	fileRepo repository.IFileRepository
	store    storage.ObjectStorage
}

// NewFileService creates a new FileService.
func NewFileService(fileRepo repository.IFileRepository, store storage.ObjectStorage) *FileService {
	return &FileService{fileRepo: fileRepo, store: store}
}

// UploadFile pushes the content to the storage backend and records the
// metadata row. If the row insert fails the uploaded object is removed again.
func (s *FileService) UploadFile(ctx context.Context, userID, fileName string, content io.Reader) (*model.File, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"file_name": fileName,
	})
	log.Info("Uploading file")

	url, publicID, err := s.store.Upload(ctx, fileName, content)
	if err != nil {
		return nil, fmt.Errorf("could not upload file: %w", err)
	}

	file := &model.File{
		ID:       uuid.NewString(),
		UserID:   userID,
		FileName: fileName,
		URL:      url,
		PublicID: publicID,
	}
	if err := s.fileRepo.CreateFile(file); err != nil {
		if delErr := s.store.Delete(ctx, publicID); delErr != nil {
			log.WithError(delErr).Warn("Failed to clean up orphaned upload")
		}
		return nil, fmt.Errorf("could not save file metadata: %w", err)
	}
	return file, nil
}

// ListFiles returns the metadata rows owned by the user.
func (s *FileService) ListFiles(ctx context.Context, userID string) ([]*model.File, error) {
	files, err := s.fileRepo.ListFilesByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("could not list files: %w", err)
	}
	return files, nil
}

// GetFile returns a single file the user owns. Like DeleteFile, a file owned
// by someone else is reported as not found rather than forbidden, so file IDs
// are not probeable.
func (s *FileService) GetFile(ctx context.Context, userID, fileID string) (*model.File, error) {
	file, err := s.loadOwnedFile(userID, fileID)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// UpdateFile changes the metadata of a file the user owns. The stored object
// and its public ID stay untouched.
func (s *FileService) UpdateFile(ctx context.Context, userID, fileID string, req model.UpdateFileRequest) (*model.File, error) {
	file, err := s.loadOwnedFile(userID, fileID)
	if err != nil {
		return nil, err
	}

	file.FileName = req.FileName
	if err := s.fileRepo.UpdateFile(file); err != nil {
		return nil, fmt.Errorf("could not update file metadata: %w", err)
	}
	return file, nil
}

// DeleteFile removes a file the user owns.
func (s *FileService) DeleteFile(ctx context.Context, userID, fileID string) error {
	file, err := s.loadOwnedFile(userID, fileID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.PublicID); err != nil {
		return fmt.Errorf("could not delete stored object: %w", err)
	}
	if err := s.fileRepo.DeleteFile(file.ID); err != nil {
		return fmt.Errorf("could not delete file metadata: %w", err)
	}
	return nil
}

// loadOwnedFile fetches a row and checks ownership. Non-owners get the same
// ErrFileNotFound as a missing row.
func (s *FileService) loadOwnedFile(userID, fileID string) (*model.File, error) {
	file, err := s.fileRepo.GetFileByID(fileID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("could not load file: %w", err)
	}
	if file.UserID != userID {
		return nil, ErrFileNotFound
	}
	return file, nil
}
