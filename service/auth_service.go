package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("refresh token required")
	ErrTokenNotRecognized = errors.New("refresh token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("no active session for user")
)

// AuthService orchestrates registration, login, refresh rotation, logout and
// profile lookup. It owns no token state itself; the token repository holds
// the single active refresh row per user and this service drives when that
// row is replaced or removed.
type AuthService struct {
	db        *sql.DB
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	codec     *TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *sql.DB, userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, codec *TokenCodec) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		codec:     codec,
	}
}

// AuthResult is what a successful registration returns: the created user
// (without its password hash) plus a fresh token pair.
type AuthResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a user and establishes its first session. The user insert
// and the refresh token insert commit as one transaction: a failure minting
// or storing the token rolls the user row back too, so a registered user
// always starts with a session row.
//
// The role in the request must already be authorized by the caller. This
// method never infers elevation; the public registration handler rejects
// admin before it gets here.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*AuthResult, error) {
	log := logger.Log.WithField("email", req.Email)
	log.Info("Starting user registration")

	_, err := s.userRepo.GetUserByEmail(req.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("could not check existing email: %w", err)
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.CreateUser(tx, user); err != nil {
		// A concurrent registration can slip past the precondition check;
		// the unique index on email is the authoritative guard.
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	pair, err := s.codec.SignPair(user)
	if err != nil {
		return nil, fmt.Errorf("could not sign token pair: %w", err)
	}

	if _, err := s.tokenRepo.Replace(tx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = ""
	return &AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Login verifies credentials and replaces the user's refresh token row with a
// freshly minted one. An unknown email and a wrong password produce the same
// error on purpose; the response must not reveal which check failed.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.codec.SignPair(user)
	if err != nil {
		return nil, fmt.Errorf("could not sign token pair: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.tokenRepo.Replace(tx, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in successfully")
	return pair, nil
}

// Refresh exchanges a valid, currently stored refresh token for a new pair,
// invalidating the one that was just used.
//
// The token clears two independent checks: the signature and expiry must
// verify, and the exact value must still be the stored row for some user.
// The second check is the replay defense. A token that verifies fine but was
// superseded by a later login or refresh is rejected. The delete-by-value
// inside the transaction closes the race between two refreshes of the same
// token: only one of them can observe the row and delete it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		// Fail fast on a cryptographic or expiry failure, without a lookup.
		return nil, ErrInvalidToken
	}

	if _, err := s.tokenRepo.GetByToken(refreshToken); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotRecognized
		}
		return nil, fmt.Errorf("could not look up refresh token: %w", err)
	}

	user := &model.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  model.Role(claims.Role),
	}
	pair, err := s.codec.SignPair(user)
	if err != nil {
		return nil, fmt.Errorf("could not sign token pair: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := s.tokenRepo.DeleteByToken(tx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("could not delete refresh token: %w", err)
	}
	if rows == 0 {
		// A concurrent refresh or logout got here first.
		return nil, ErrTokenNotRecognized
	}

	if _, err := s.tokenRepo.Replace(tx, claims.UserID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	logger.Log.WithField("user_id", claims.UserID).Info("Refresh token rotated")
	return pair, nil
}

// Logout removes the stored refresh token row. Logging out of a session that
// is already gone is reported as an error rather than silently accepted, so
// client bugs that reuse dead tokens stay visible.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := s.tokenRepo.DeleteByToken(tx, refreshToken)
	if err != nil {
		return fmt.Errorf("could not delete refresh token: %w", err)
	}
	if rows == 0 {
		return ErrTokenNotRecognized
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// GetProfile loads the user together with its session row. A user without a
// stored refresh token is treated as not currently authenticated even though
// the identity row exists.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	if user.Token == nil {
		return nil, ErrSessionInvalid
	}

	user.Password = ""
	return user, nil
}
