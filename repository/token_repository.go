// file: repository/token_repository.go

package repository

import (
	"database/sql"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"

	"github.com/google/uuid"
)

// ITokenRepository defines the contract for refresh token database operations.
//
// A user has at most one active refresh token; tokens.user_id is UNIQUE and
// Replace is the only way a row is ever written. Mutations take the caller's
// *sql.Tx so the delete-then-insert (and, for registration, the user insert)
// commit as one unit.
type ITokenRepository interface {
	Replace(tx *sql.Tx, userID, token string) (*model.RefreshToken, error)
	GetByToken(token string) (*model.RefreshToken, error)
	DeleteByToken(tx *sql.Tx, token string) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Replace removes any existing refresh token row for the user and inserts the
// new one. The surrounding transaction plus the unique constraint on user_id
// guarantee that two racing replaces cannot leave two rows behind.
func (r *TokenRepository) Replace(tx *sql.Tx, userID, token string) (*model.RefreshToken, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Replacing refresh token for user")

	if _, err := tx.Exec(`DELETE FROM tokens WHERE user_id = $1`, userID); err != nil {
		log.WithError(err).Error("Failed to delete previous refresh token")
		return nil, err
	}

	row := &model.RefreshToken{
		ID:     uuid.NewString(),
		UserID: userID,
		Token:  token,
	}
	query := `INSERT INTO tokens (id, user_id, token) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	if err := tx.QueryRow(query, row.ID, row.UserID, row.Token).Scan(&row.CreatedAt, &row.UpdatedAt); err != nil {
		log.WithError(err).Error("Failed to insert refresh token")
		return nil, err
	}
	return row, nil
}

// GetByToken retrieves a refresh token row by its exact signed value.
func (r *TokenRepository) GetByToken(token string) (*model.RefreshToken, error) {
	row := &model.RefreshToken{}
	query := `SELECT id, user_id, token, created_at, updated_at FROM tokens WHERE token = $1`
	err := r.DB.QueryRow(query, token).Scan(&row.ID, &row.UserID, &row.Token, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return row, nil
}

// DeleteByToken deletes the row with the given value and reports how many
// rows went away. Zero means the token was already rotated or never stored,
// which is how a racing refresh loses.
func (r *TokenRepository) DeleteByToken(tx *sql.Tx, token string) (int64, error) {
	res, err := tx.Exec(`DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete refresh token query")
		return 0, err
	}
	return res.RowsAffected()
}
