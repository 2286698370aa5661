package router

import (
	"net/http"

	"github.com/SOUROVSARKERTEC12/file-auth-management/handler"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(codec *service.TokenCodec, authHandler *handler.AuthHandler, userHandler *handler.UserHandler, fileHandler *handler.FileHandler) http.Handler {
	mux := http.NewServeMux()

	auth := handler.AuthMiddleware(codec)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("GET /api/profile", auth(handler.ErrorHandlingMiddleware(authHandler.Profile)))

	mux.Handle("POST /api/files", auth(handler.ErrorHandlingMiddleware(fileHandler.Upload)))
	mux.Handle("GET /api/files", auth(handler.ErrorHandlingMiddleware(fileHandler.ListFiles)))
	mux.Handle("GET /api/files/{id}", auth(handler.ErrorHandlingMiddleware(fileHandler.GetFile)))
	mux.Handle("PATCH /api/files/{id}", auth(handler.ErrorHandlingMiddleware(fileHandler.UpdateFile)))
	mux.Handle("DELETE /api/files/{id}", auth(handler.ErrorHandlingMiddleware(fileHandler.DeleteFile)))

	mux.Handle("POST /api/admin/register", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(authHandler.RegisterAdmin))))
	mux.Handle("GET /api/admin/users", auth(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(userHandler.ListUsers))))

	return handler.RequestLoggingMiddleware(mux)
}
