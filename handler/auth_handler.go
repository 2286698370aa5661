package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SOUROVSARKERTEC12/file-auth-management/common"
	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// Register godoc
// @Summary      Register a new user
// @Description  Public endpoint to register a new user. Admin role cannot be registered through this endpoint.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201 {object} service.AuthResult
// @Failure      400 {object} common.AppError
// @Failure      403 {object} common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	// Self-elevation guard: the public endpoint never forwards an admin role
	// to the service, no matter what the payload claims.
	if req.Role == model.RoleAdmin {
		return common.NewAppError(http.StatusForbidden, "Cannot register as admin", nil)
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		return mapAuthError(err)
	}

	h.userService.InvalidateListCache(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
	return nil
}

// RegisterAdmin godoc
// @Summary      Register a new admin user
// @Description  Protected endpoint (Admin only) to register a user with an explicit role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201 {object} service.AuthResult
// @Failure      400 {object} common.AppError
// @Failure      403 {object} common.AppError
// @Router       /api/admin/register [post]
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	// The admin middleware has already authenticated an admin caller, so the
	// requested role is accepted as-is here.
	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		return mapAuthError(err)
	}

	h.userService.InvalidateListCache(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
	return nil
}

// Login godoc
// @Summary      User login
// @Description  Authenticate user and receive access and refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.authService.Login(r.Context(), req)
	if err != nil {
		return mapAuthError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Refresh godoc
// @Summary      Rotate the refresh token
// @Description  Exchange a valid refresh token for a new access/refresh pair. The used token is invalidated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh payload"
// @Success      200 {object} service.TokenPair
// @Failure      401 {object} common.AppError
// @Failure      403 {object} common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return mapAuthError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Delete the stored refresh token, ending the session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LogoutRequest true "Logout payload"
// @Success      204
// @Failure      403 {object} common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LogoutRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		return mapAuthError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Profile godoc
// @Summary      Get the authenticated user's profile
// @Description  Returns the user record, visible only while a session exists.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.User
// @Failure      403 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Router       /api/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		return mapAuthError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
	return nil
}

// mapAuthError translates the service error taxonomy into HTTP responses.
// Credential and token failures deliberately stay coarse; the message never
// says which underlying check failed.
func mapAuthError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return common.NewAppError(http.StatusBadRequest, "Email already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, service.ErrMissingToken):
		return common.NewAppError(http.StatusUnauthorized, "Refresh token required", nil)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewAppError(http.StatusForbidden, "Invalid refresh token", nil)
	case errors.Is(err, service.ErrTokenNotRecognized):
		return common.NewAppError(http.StatusForbidden, "Refresh token is invalid or expired", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrSessionInvalid):
		return common.NewAppError(http.StatusForbidden, "Token is invalid or expired", nil)
	default:
		logger.Log.WithError(err).Error("Unexpected error in auth flow")
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
