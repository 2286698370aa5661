package repository

import (
	"database/sql"

	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
)

// IFileRepository defines the contract for file metadata persistence.
type IFileRepository interface {
	CreateFile(file *model.File) error
	GetFileByID(id string) (*model.File, error)
	ListFilesByUserID(userID string) ([]*model.File, error)
	UpdateFile(file *model.File) error
	DeleteFile(id string) error
}

type FileRepository struct {
	DB *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{DB: db}
}

func (r *FileRepository) CreateFile(file *model.File) error {
	query := `INSERT INTO files (id, user_id, file_name, url, public_id)
	          VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	return r.DB.QueryRow(query, file.ID, file.UserID, file.FileName, file.URL, file.PublicID).
		Scan(&file.CreatedAt, &file.UpdatedAt)
}

func (r *FileRepository) GetFileByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT id, user_id, file_name, url, public_id, created_at, updated_at FROM files WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&file.ID, &file.UserID, &file.FileName,
		&file.URL, &file.PublicID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *FileRepository) ListFilesByUserID(userID string) ([]*model.File, error) {
	query := `SELECT id, user_id, file_name, url, public_id, created_at, updated_at
	          FROM files WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.File
	for rows.Next() {
		file := &model.File{}
		if err := rows.Scan(&file.ID, &file.UserID, &file.FileName,
			&file.URL, &file.PublicID, &file.CreatedAt, &file.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// UpdateFile persists the mutable metadata of an existing row.
func (r *FileRepository) UpdateFile(file *model.File) error {
	query := `UPDATE files SET file_name = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	return r.DB.QueryRow(query, file.FileName, file.ID).Scan(&file.UpdatedAt)
}

func (r *FileRepository) DeleteFile(id string) error {
	_, err := r.DB.Exec(`DELETE FROM files WHERE id = $1`, id)
	return err
}
