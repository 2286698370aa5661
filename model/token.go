// file: model/token.go

package model

import "time"

// RefreshToken holds the single active refresh token row for a user.
// tokens.user_id carries a UNIQUE constraint, so a user can never have
// more than one active session row.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"` // The signed value is not exposed in JSON responses.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
