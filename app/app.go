// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SOUROVSARKERTEC12/file-auth-management/config"
	"github.com/SOUROVSARKERTEC12/file-auth-management/db"
	"github.com/SOUROVSARKERTEC12/file-auth-management/handler"
	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/repository"
	"github.com/SOUROVSARKERTEC12/file-auth-management/router"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"
	"github.com/SOUROVSARKERTEC12/file-auth-management/storage"

	"github.com/redis/go-redis/v9"
)

// TestApp exposes the wired router and database to integration tests.
type TestApp struct {
	DB     *sql.DB
	Router http.Handler
}

// NewTestApp wires the full application against an existing database and
// Redis client, without starting a server.
func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	return &TestApp{
		DB:     database,
		Router: buildRouter(database, redisClient),
	}
}

func buildRouter(database *sql.DB, redisClient *redis.Client) http.Handler {
	codec := service.NewTokenCodec(
		config.AppConfig.JWT.SecretKey,
		config.AppConfig.AccessTTL(),
		config.AppConfig.RefreshTTL(),
	)

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	fileRepo := repository.NewFileRepository(database)

	localStore, err := storage.NewLocalStorage(config.AppConfig.Storage.UploadDir)
	if err != nil {
		logger.Log.Fatalf("Error preparing upload storage: %v", err)
	}

	var cache service.ICacheClient
	if redisClient != nil {
		cache = redisClient
	}

	authService := service.NewAuthService(database, userRepo, tokenRepo, codec)
	userService := service.NewUserService(userRepo, cache)
	fileService := service.NewFileService(fileRepo, localStore)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	fileHandler := handler.NewFileHandler(fileService)

	return router.NewRouter(codec, authHandler, userHandler, fileHandler)
}

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	r := buildRouter(database, redisClient)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
