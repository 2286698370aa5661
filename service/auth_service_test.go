// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockUserRepo is a mock for IUserRepository.
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(tx *sql.Tx, user *model.User) error {
	args := m.Called(tx, user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) ListUsers(q model.ListUsersQuery) ([]*model.User, int, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.User), args.Int(1), args.Error(2)
}

// mockTokenRepo is a mock for ITokenRepository.
type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Replace(tx *sql.Tx, userID, token string) (*model.RefreshToken, error) {
	args := m.Called(tx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) GetByToken(token string) (*model.RefreshToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) DeleteByToken(tx *sql.Tx, token string) (int64, error) {
	args := m.Called(tx, token)
	return args.Get(0).(int64), args.Error(1)
}

func newTestCodec() *TokenCodec {
	return NewTokenCodec("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func newTestService(t *testing.T) (*AuthService, *mockUserRepo, *mockTokenRepo, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := new(mockUserRepo)
	tokenRepo := new(mockTokenRepo)
	svc := NewAuthService(db, userRepo, tokenRepo, newTestCodec())
	return svc, userRepo, tokenRepo, dbMock
}

func storedToken(userID, token string) *model.RefreshToken {
	return &model.RefreshToken{
		ID:     uuid.NewString(),
		UserID: userID,
		Token:  token,
	}
}

func TestAuthService_Register(t *testing.T) {
	registerReq := model.RegisterRequest{
		FirstName: "Sourov",
		LastName:  "Sarker",
		Email:     "a@b.com",
		Password:  "Str0ng!Pass",
	}

	t.Run("success", func(t *testing.T) {
		svc, userRepo, tokenRepo, dbMock := newTestService(t)

		userRepo.On("GetUserByEmail", "a@b.com").Return(nil, sql.ErrNoRows).Once()
		userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "a@b.com" && u.Role == model.RoleUser && u.ID != "" && u.Password != "Str0ng!Pass"
		})).Return(nil).Once()
		tokenRepo.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(storedToken("", ""), nil).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()

		result, err := svc.Register(context.Background(), registerReq)

		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", result.User.Email)
		assert.Empty(t, result.User.Password, "password hash must not be returned")
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.NotEqual(t, result.AccessToken, result.RefreshToken)
		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate email fails without touching the token store", func(t *testing.T) {
		svc, userRepo, tokenRepo, _ := newTestService(t)

		userRepo.On("GetUserByEmail", "a@b.com").
			Return(&model.User{ID: "existing", Email: "a@b.com"}, nil).Once()

		_, err := svc.Register(context.Background(), registerReq)

		assert.ErrorIs(t, err, ErrDuplicateEmail)
		tokenRepo.AssertNotCalled(t, "Replace")
		userRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("concurrent duplicate surfaces the unique violation", func(t *testing.T) {
		svc, userRepo, tokenRepo, dbMock := newTestService(t)

		userRepo.On("GetUserByEmail", "a@b.com").Return(nil, sql.ErrNoRows).Once()
		userRepo.On("CreateUser", mock.Anything, mock.Anything).
			Return(&pq.Error{Code: "23505"}).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		_, err := svc.Register(context.Background(), registerReq)

		assert.ErrorIs(t, err, ErrDuplicateEmail)
		tokenRepo.AssertNotCalled(t, "Replace")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("token store failure rolls the user insert back", func(t *testing.T) {
		svc, userRepo, tokenRepo, dbMock := newTestService(t)

		userRepo.On("GetUserByEmail", "a@b.com").Return(nil, sql.ErrNoRows).Once()
		userRepo.On("CreateUser", mock.Anything, mock.Anything).Return(nil).Once()
		tokenRepo.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		_, err := svc.Register(context.Background(), registerReq)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, dbMock.ExpectationsWereMet(), "a failed token write must roll back the whole unit")
	})
}

func TestAuthService_Login(t *testing.T) {
	svcForHash, _, _, _ := newTestService(t)
	hash, err := svcForHash.HashPassword("Str0ng!Pass")
	assert.NoError(t, err)

	storedUser := func() *model.User {
		return &model.User{
			ID:       uuid.NewString(),
			Email:    "a@b.com",
			Password: hash,
			Role:     model.RoleUser,
		}
	}

	t.Run("success", func(t *testing.T) {
		svc, userRepo, tokenRepo, dbMock := newTestService(t)
		user := storedUser()

		userRepo.On("GetUserByEmail", "a@b.com").Return(user, nil).Once()
		tokenRepo.On("Replace", mock.Anything, user.ID, mock.Anything).
			Return(storedToken(user.ID, ""), nil).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()

		pair, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@b.com", Password: "Str0ng!Pass"})

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		tokenRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown email and wrong password return the same error", func(t *testing.T) {
		svc, userRepo, tokenRepo, _ := newTestService(t)

		userRepo.On("GetUserByEmail", "nobody@b.com").Return(nil, sql.ErrNoRows).Once()
		userRepo.On("GetUserByEmail", "a@b.com").Return(storedUser(), nil).Once()

		_, errUnknown := svc.Login(context.Background(), model.LoginRequest{Email: "nobody@b.com", Password: "Str0ng!Pass"})
		_, errWrongPw := svc.Login(context.Background(), model.LoginRequest{Email: "a@b.com", Password: "wrong-password"})

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
		assert.Equal(t, errUnknown, errWrongPw, "the two failure modes must be indistinguishable")
		tokenRepo.AssertNotCalled(t, "Replace")
	})
}

func TestAuthService_Refresh(t *testing.T) {
	codec := newTestCodec()
	user := &model.User{ID: uuid.NewString(), Email: "a@b.com", Role: model.RoleUser}

	t.Run("missing token", func(t *testing.T) {
		svc, _, tokenRepo, _ := newTestService(t)

		_, err := svc.Refresh(context.Background(), "")

		assert.ErrorIs(t, err, ErrMissingToken)
		tokenRepo.AssertNotCalled(t, "GetByToken")
	})

	t.Run("forged token fails before any lookup", func(t *testing.T) {
		svc, _, tokenRepo, _ := newTestService(t)

		_, err := svc.Refresh(context.Background(), "garbage.token.value")

		assert.ErrorIs(t, err, ErrInvalidToken)
		tokenRepo.AssertNotCalled(t, "GetByToken")
	})

	t.Run("expired token fails even if still stored", func(t *testing.T) {
		svc, _, tokenRepo, _ := newTestService(t)

		expired, err := codec.Sign(user, -1*time.Minute)
		assert.NoError(t, err)

		_, err = svc.Refresh(context.Background(), expired)

		assert.ErrorIs(t, err, ErrInvalidToken)
		// Signature and expiry checks precede store membership.
		tokenRepo.AssertNotCalled(t, "GetByToken")
	})

	t.Run("valid signature but rotated-out token", func(t *testing.T) {
		svc, _, tokenRepo, _ := newTestService(t)

		token, err := codec.Sign(user, time.Hour)
		assert.NoError(t, err)
		tokenRepo.On("GetByToken", token).Return(nil, sql.ErrNoRows).Once()

		_, err = svc.Refresh(context.Background(), token)

		assert.ErrorIs(t, err, ErrTokenNotRecognized)
		tokenRepo.AssertNotCalled(t, "Replace")
	})

	t.Run("success rotates the stored row", func(t *testing.T) {
		svc, _, tokenRepo, dbMock := newTestService(t)

		token, err := codec.Sign(user, time.Hour)
		assert.NoError(t, err)

		tokenRepo.On("GetByToken", token).Return(storedToken(user.ID, token), nil).Once()
		tokenRepo.On("DeleteByToken", mock.Anything, token).Return(int64(1), nil).Once()
		tokenRepo.On("Replace", mock.Anything, user.ID, mock.MatchedBy(func(newToken string) bool {
			return newToken != token && newToken != ""
		})).Return(storedToken(user.ID, ""), nil).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectCommit()

		pair, err := svc.Refresh(context.Background(), token)

		assert.NoError(t, err)
		assert.NotEqual(t, token, pair.RefreshToken, "rotation must mint a new refresh token")
		claims, err := newTestCodec().Verify(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		tokenRepo.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("losing a rotation race rolls back", func(t *testing.T) {
		svc, _, tokenRepo, dbMock := newTestService(t)

		token, err := codec.Sign(user, time.Hour)
		assert.NoError(t, err)

		tokenRepo.On("GetByToken", token).Return(storedToken(user.ID, token), nil).Once()
		tokenRepo.On("DeleteByToken", mock.Anything, token).Return(int64(0), nil).Once()

		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		_, err = svc.Refresh(context.Background(), token)

		assert.ErrorIs(t, err, ErrTokenNotRecognized)
		tokenRepo.AssertNotCalled(t, "Replace")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, _, tokenRepo, dbMock := newTestService(t)

		tokenRepo.On("DeleteByToken", mock.Anything, "some-token").Return(int64(1), nil).Once()
		dbMock.ExpectBegin()
		dbMock.ExpectCommit()

		err := svc.Logout(context.Background(), "some-token")

		assert.NoError(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("already invalidated session is reported", func(t *testing.T) {
		svc, _, tokenRepo, dbMock := newTestService(t)

		tokenRepo.On("DeleteByToken", mock.Anything, "gone-token").Return(int64(0), nil).Once()
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		err := svc.Logout(context.Background(), "gone-token")

		assert.ErrorIs(t, err, ErrTokenNotRecognized)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		svc, userRepo, _, _ := newTestService(t)
		userRepo.On("GetUserByID", "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := svc.GetProfile(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("user without a session row", func(t *testing.T) {
		svc, userRepo, _, _ := newTestService(t)
		userRepo.On("GetUserByID", "u1").
			Return(&model.User{ID: "u1", Email: "a@b.com", Password: "hash"}, nil).Once()

		_, err := svc.GetProfile(context.Background(), "u1")

		assert.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("active session", func(t *testing.T) {
		svc, userRepo, _, _ := newTestService(t)
		userRepo.On("GetUserByID", "u1").Return(&model.User{
			ID:       "u1",
			Email:    "a@b.com",
			Password: "hash",
			Token:    &model.RefreshToken{ID: "t1", UserID: "u1"},
		}, nil).Once()

		user, err := svc.GetProfile(context.Background(), "u1")

		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", user.Email)
		assert.Empty(t, user.Password, "password hash must be scrubbed")
	})
}
