package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SOUROVSARKERTEC12/file-auth-management/logger"
	"github.com/SOUROVSARKERTEC12/file-auth-management/model"
	"github.com/SOUROVSARKERTEC12/file-auth-management/repository"

	"github.com/redis/go-redis/v9"
)

const userListCacheTTL = 60 * time.Second

// UserService handles user listing with a short-lived Redis cache in front
// of the database. Registration invalidates the cached pages.
type UserService struct {
	userRepo repository.IUserRepository
	cache    ICacheClient
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, cache ICacheClient) *UserService {
	return &UserService{userRepo: userRepo, cache: cache}
}

// UserListPage is the paginated response for the admin user listing.
type UserListPage struct {
	Data []*model.User `json:"data"`
	Meta struct {
		TotalItems   int `json:"total_items"`
		ItemCount    int `json:"item_count"`
		ItemsPerPage int `json:"items_per_page"`
		CurrentPage  int `json:"current_page"`
		TotalPages   int `json:"total_pages"`
	} `json:"meta"`
}

// ListUsers returns a page of users matching the query. Results are cached
// per-query for a minute; a hit never touches the database.
func (s *UserService) ListUsers(ctx context.Context, query model.ListUsersQuery) (*UserListPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 10
	}
	if query.SortBy == "" {
		query.SortBy = "created_at"
	}
	if query.Order == "" {
		query.Order = "DESC"
	}

	cacheKey := userListCacheKey(query)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			page := &UserListPage{}
			if err := json.Unmarshal([]byte(cached), page); err == nil {
				logger.Log.WithField("cache_key", cacheKey).Debug("User list served from cache")
				return page, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("User list cache read failed, falling back to database")
		}
	}

	users, total, err := s.userRepo.ListUsers(query)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	page := &UserListPage{Data: users}
	page.Meta.TotalItems = total
	page.Meta.ItemCount = len(users)
	page.Meta.ItemsPerPage = query.Limit
	page.Meta.CurrentPage = query.Page
	page.Meta.TotalPages = (total + query.Limit - 1) / query.Limit

	if s.cache != nil {
		if encoded, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, userListCacheTTL).Err(); err != nil {
				logger.Log.WithError(err).Warn("Failed to write user list cache")
			}
		}
	}
	return page, nil
}

// InvalidateListCache drops every cached user list page. Called after a
// successful registration so new users show up immediately.
func (s *UserService) InvalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	var cursor uint64
	for {
		keys, next, err := s.cache.Scan(ctx, cursor, "users:*", 100).Result()
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to scan user list cache keys")
			return
		}
		if len(keys) > 0 {
			if err := s.cache.Del(ctx, keys...).Err(); err != nil {
				logger.Log.WithError(err).Warn("Failed to invalidate user list cache")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func userListCacheKey(query model.ListUsersQuery) string {
	encoded, _ := json.Marshal(query)
	return "users:" + string(encoded)
}
