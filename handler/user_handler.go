package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SOUROVSARKERTEC12/file-auth-management/common"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers godoc
// @Summary      List users
// @Description  Admin-only paginated user listing with search, filter and sort.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size"
// @Param        search query string false "Substring match on name or email"
// @Param        email query string false "Exact email filter"
// @Param        role query string false "Role filter" Enums(user, admin)
// @Success      200 {object} service.UserListPage
// @Failure      403 {object} common.AppError
// @Router       /api/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	q := r.URL.Query()
	query := model.ListUsersQuery{
		Search: q.Get("search"),
		Email:  q.Get("email"),
		Role:   q.Get("role"),
		SortBy: q.Get("sort_by"),
		Order:  q.Get("order"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	if err := common.ValidateStruct(query); err != nil {
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	}

	page, err := h.userService.ListUsers(r.Context(), query)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve users", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(page)
	return nil
}
