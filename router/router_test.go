// file: router/router_test.go

package router_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/SOUROVSARKERTEC12/file-auth-management/app"
	"github.com/SOUROVSARKERTEC12/file-auth-management/config"
	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var testApp *app.TestApp

func TestMain(m *testing.M) {
	logger.Init()
	config.LoadConfig("../")
	config.AppConfig.Storage.UploadDir = os.TempDir()

	// Route-level tests never reach the database; the full flow test below
	// wires a real one when TEST_DATABASE_URL is set.
	testApp = app.NewTestApp(nil, nil)

	os.Exit(m.Run())
}

func newCodec() *service.TokenCodec {
	return service.NewTokenCodec(
		config.AppConfig.JWT.SecretKey,
		config.AppConfig.AccessTTL(),
		config.AppConfig.RefreshTTL(),
	)
}

func TestHealthCheck(t *testing.T) {
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/profile"},
		{"GET", "/api/files"},
		{"GET", "/api/files/some-id"},
		{"PATCH", "/api/files/some-id"},
		{"DELETE", "/api/files/some-id"},
		{"GET", "/api/admin/users"},
		{"POST", "/api/admin/register"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req, _ := http.NewRequest(p.method, p.path, nil)
			rr := httptest.NewRecorder()
			testApp.Router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestProtectedRoutes_RejectGarbageToken(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rr := httptest.NewRecorder()

	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminRoutes_ForbiddenForRegularUsers(t *testing.T) {
	token, err := newCodec().Sign(&model.User{
		ID:    "user-1",
		Email: "a@b.com",
		Role:  model.RoleUser,
	}, config.AppConfig.AccessTTL())
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRegister_RejectsSelfElevation(t *testing.T) {
	body := `{"last_name":"Sarker","email":"admin-wannabe@test.com","password":"password123","role":"admin"}`
	req, _ := http.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	testApp.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

// --- Full-stack flow against a real database ---

func setupIntegration(t *testing.T) *app.TestApp {
	t.Helper()
	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("could not connect to test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ping(); err != nil {
		t.Fatalf("database not ready: %v", err)
	}

	mig, err := migrate.New("file://../db/migrations", connStr)
	if err != nil {
		t.Fatalf("cannot create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migrate up: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.Redis.Host, config.AppConfig.Redis.Port),
		Password: config.AppConfig.Redis.Password,
		DB:       1, // Use a separate DB for test isolation.
	})
	t.Cleanup(func() { redisClient.Close() })

	return app.NewTestApp(db, redisClient)
}

func TestAuthFlow_Integration(t *testing.T) {
	integrationApp := setupIntegration(t)
	email := "authflow@test.com"
	defer integrationApp.DB.Exec("DELETE FROM users WHERE email = $1", email)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		integrationApp.Router.ServeHTTP(rr, req)
		return rr
	}

	// Register.
	registerBody := fmt.Sprintf(`{"last_name":"Flow","email":"%s","password":"password123"}`, email)
	rr := do("POST", "/auth/register", registerBody)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registered service.AuthResult
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.Equal(t, email, registered.User.Email)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	// Duplicate registration.
	rr = do("POST", "/auth/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Wrong password, then the real one.
	rr = do("POST", "/auth/login", fmt.Sprintf(`{"email":"%s","password":"wrong-password"}`, email))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do("POST", "/auth/login", fmt.Sprintf(`{"email":"%s","password":"password123"}`, email))
	assert.Equal(t, http.StatusOK, rr.Code)
	var loginPair service.TokenPair
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginPair))
	assert.NotEqual(t, registered.RefreshToken, loginPair.RefreshToken)

	// The registration-time refresh token was superseded by the login.
	rr = do("POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, registered.RefreshToken))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Rotation: the current token refreshes once, then stops working.
	rr = do("POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, loginPair.RefreshToken))
	assert.Equal(t, http.StatusOK, rr.Code)
	var rotated service.TokenPair
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rotated))

	rr = do("POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, loginPair.RefreshToken))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Exactly one token row for the user, whatever happened above.
	var count int
	assert.NoError(t, integrationApp.DB.QueryRow(
		`SELECT COUNT(*) FROM tokens WHERE user_id = $1`, registered.User.ID).Scan(&count))
	assert.Equal(t, 1, count)

	// Profile while the session lives.
	req, _ := http.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+rotated.AccessToken)
	prr := httptest.NewRecorder()
	integrationApp.Router.ServeHTTP(prr, req)
	assert.Equal(t, http.StatusOK, prr.Code)

	// Logout, then everything about that session is dead.
	rr = do("POST", "/auth/logout", fmt.Sprintf(`{"refresh_token":"%s"}`, rotated.RefreshToken))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do("POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":"%s"}`, rotated.RefreshToken))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	prr = httptest.NewRecorder()
	integrationApp.Router.ServeHTTP(prr, req)
	assert.Equal(t, http.StatusForbidden, prr.Code)
}
