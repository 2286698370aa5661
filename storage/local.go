package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage stores uploaded files on the local filesystem. It exists so
// the application runs without a cloud account; swapping in a hosted backend
// only requires another ObjectStorage implementation.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, fileName string, content io.Reader) (string, string, error) {
	publicID := uuid.NewString() + filepath.Ext(fileName)
	path := filepath.Join(s.dir, publicID)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("could not write file: %w", err)
	}

	return "/uploads/" + publicID, publicID, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicID string) error {
	path := filepath.Join(s.dir, filepath.Base(publicID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove file: %w", err)
	}
	return nil
}
