// Package catalog 提供食譜目錄：從外部 API 載入、保存在 SQLite，並支援搜尋、分頁與快取。
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultPageSize 未指定 size 時的每頁筆數
const DefaultPageSize = 20

// PageResult 分頁結果
type PageResult struct {
	Content       []recipe.Recipe `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}

// Service 食譜目錄服務
type Service struct {
	store    *Store
	upstream Upstream
	cache    cache.Store
}

// NewService 創建目錄服務，c 可為 nil
func NewService(store *Store, upstream Upstream, c cache.Store) *Service {
	return &Service{store: store, upstream: upstream, cache: c}
}

// Load 從外部 API 重新載入目錄。
// 外部 API 失敗或沒有資料時保留現有內容，回傳 0。
func (s *Service) Load(ctx context.Context) (int, error) {
	recipes, err := s.upstream.Fetch(ctx)
	if err != nil {
		common.LogWarn("Upstream unavailable, falling back to empty result", zap.Error(err))
		recipes = nil
	}
	if len(recipes) == 0 {
		common.LogWarn("No recipes received from upstream, keeping existing catalog")
		return 0, nil
	}

	count, err := s.store.ReplaceAll(ctx, recipes)
	if err != nil {
		return 0, common.NewError(common.ErrCodeInternalError, "Failed to store recipes", http.StatusInternalServerError, err)
	}
	s.evict(ctx)

	common.LogInfo(common.MsgRecipesLoaded, zap.Int("count", count))
	return count, nil
}

// List 搜尋食譜，query 為空時回傳全部
func (s *Service) List(ctx context.Context, query string) ([]recipe.Recipe, error) {
	query = strings.TrimSpace(query)
	key := cache.Key("search", strings.ToLower(query))

	var cached []recipe.Recipe
	if s.cached(ctx, key, &cached) {
		return cached, nil
	}

	recipes, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalError, "Failed to search recipes", http.StatusInternalServerError, err)
	}
	s.remember(ctx, key, recipes)
	return recipes, nil
}

// Page 分頁搜尋。page 從 0 起算，size 至少為 1
func (s *Service) Page(ctx context.Context, query string, page, size int) (PageResult, error) {
	// 超出範圍的頁碼與頁大小取最近的合法值
	page = max(page, 0)
	size = max(size, 1)

	query = strings.TrimSpace(query)
	key := cache.Key("page", strings.ToLower(query), page, size)

	var cached PageResult
	if s.cached(ctx, key, &cached) {
		return cached, nil
	}

	content, total, err := s.store.Page(ctx, query, page*size, size)
	if err != nil {
		return PageResult{}, common.NewError(common.ErrCodeInternalError, "Failed to search recipes", http.StatusInternalServerError, err)
	}

	result := PageResult{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}
	s.remember(ctx, key, result)
	return result, nil
}

// Get 依 id 取得食譜
func (s *Service) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	key := cache.Key("recipe", id)

	var cached recipe.Recipe
	if s.cached(ctx, key, &cached) {
		return cached, nil
	}

	r, err := s.store.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return recipe.Recipe{}, common.NewError(common.ErrCodeNotFound, "Recipe not found with id: "+id, http.StatusNotFound, err)
	}
	if err != nil {
		return recipe.Recipe{}, common.NewError(common.ErrCodeInternalError, "Failed to load recipe", http.StatusInternalServerError, err)
	}
	s.remember(ctx, key, r)
	return r, nil
}

// Count 目前目錄筆數
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// ProbeUpstream 檢查外部 API
func (s *Service) ProbeUpstream(ctx context.Context) error {
	return s.upstream.Probe(ctx)
}

// Ready 檢查資料庫
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) cached(ctx context.Context, key string, v any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		common.LogWarn("Discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) remember(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) evict(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, cache.KeyPrefix); err != nil {
		common.LogWarn("Failed to evict catalog cache", zap.Error(err))
	}
}
