package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/SOUROVSARKERTEC12/file-auth-management/model"

	"github.com/lib/pq"
)

// IUserRepository defines the contract for user identity persistence.
type IUserRepository interface {
	CreateUser(tx *sql.Tx, user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id string) (*model.User, error)
	ListUsers(query model.ListUsersQuery) ([]*model.User, int, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint error.
func IsUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// CreateUser inserts a new user row. It runs inside the caller's transaction
// so registration can couple the user insert with the session token insert.
func (r *UserRepository) CreateUser(tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (id, first_name, last_name, email, password, role)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return tx.QueryRow(query, user.ID, user.FirstName, user.LastName, user.Email, user.Password, user.Role).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

// GetUserByEmail returns the user including the password hash, for login.
func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, first_name, last_name, email, password, role, created_at, updated_at
	          FROM users WHERE email = $1`
	err := r.DB.QueryRow(query, email).Scan(&user.ID, &user.FirstName, &user.LastName,
		&user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID returns the user together with its refresh token relation,
// if one exists. A missing token row leaves user.Token nil.
func (r *UserRepository) GetUserByID(id string) (*model.User, error) {
	user := &model.User{}
	var tokenID, tokenUserID, tokenValue sql.NullString
	var tokenCreated, tokenUpdated sql.NullTime

	query := `SELECT u.id, u.first_name, u.last_name, u.email, u.password, u.role, u.created_at, u.updated_at,
	                 t.id, t.user_id, t.token, t.created_at, t.updated_at
	          FROM users u
	          LEFT JOIN tokens t ON t.user_id = u.id
	          WHERE u.id = $1`
	err := r.DB.QueryRow(query, id).Scan(&user.ID, &user.FirstName, &user.LastName,
		&user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt,
		&tokenID, &tokenUserID, &tokenValue, &tokenCreated, &tokenUpdated)
	if err != nil {
		return nil, err
	}

	if tokenID.Valid {
		user.Token = &model.RefreshToken{
			ID:        tokenID.String,
			UserID:    tokenUserID.String,
			Token:     tokenValue.String,
			CreatedAt: tokenCreated.Time,
			UpdatedAt: tokenUpdated.Time,
		}
	}
	return user, nil
}

// sortableColumns is the ORDER BY whitelist. Anything else falls back to
// created_at so the sort clause never interpolates caller input directly.
var sortableColumns = map[string]bool{
	"created_at": true,
	"email":      true,
	"last_name":  true,
}

// ListUsers returns a page of users matching the query, plus the total count
// before pagination.
func (r *UserRepository) ListUsers(q model.ListUsersQuery) ([]*model.User, int, error) {
	var conditions []string
	var args []interface{}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	if q.Email != "" {
		args = append(args, q.Email)
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)))
	}
	if q.Role != "" {
		args = append(args, q.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.QueryRow("SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := q.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(q.Order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	query := fmt.Sprintf(`SELECT id, first_name, last_name, email, role, created_at, updated_at
	          FROM users%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, sortBy, order, len(args)-1, len(args))

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName,
			&user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}
