package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-finder/internal/core/catalog"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

type stubUpstream struct {
	recipes  []recipe.Recipe
	probeErr error
}

func (s *stubUpstream) Fetch(context.Context) ([]recipe.Recipe, error) { return s.recipes, nil }
func (s *stubUpstream) Probe(context.Context) error                   { return s.probeErr }

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Version: "test"},
		Server:      config.ServerConfig{AllowOrigins: []string{"http://localhost:3000"}},
		Upstream:    config.UpstreamConfig{URL: "https://example.test/recipes"},
		RateLimit:   config.RateLimitConfig{Enabled: true, Requests: 100, Window: time.Minute},
		DedupWindow: time.Second,
	}
}

func setupRouter(t *testing.T, up *stubUpstream) (*gin.Engine, *catalog.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := catalog.OpenStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := catalog.NewService(store, up, nil)
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	return SetupRouter(testConfig(), svc), svc
}

func sampleUpstream() *stubUpstream {
	return &stubUpstream{recipes: recipe.NormalizeMany([]any{
		map[string]any{"id": 1, "name": "Chicken Curry", "cuisine": "Indian", "tags": []any{"Chicken", "Curry"}},
		map[string]any{"id": 2, "name": "Beef Tacos", "cuisine": "Mexican", "tags": []any{"Beef"}},
		map[string]any{"id": 3, "name": "Chicken Salad", "cuisine": "American", "tags": []any{"Salad"}},
	})}
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSearch_ReturnsArray(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	w := do(r, http.MethodGet, "/api/recipes?query=chicken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "max-age=300, public", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Chicken Curry", body[0]["name"])
	assert.Equal(t, "1", body[0]["id"])
	assert.Nil(t, body[0]["rating"])
}

func TestSearch_QAliasAndAll(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	var body []map[string]any
	w := do(r, http.MethodGet, "/api/recipes?q=mexican")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 1)

	w = do(r, http.MethodGet, "/api/recipes")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 3)
}

func TestSearch_Paged(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	w := do(r, http.MethodGet, "/api/recipes?page=1&size=2")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Content       []map[string]any `json:"content"`
		Page          int              `json:"page"`
		Size          int              `json:"size"`
		TotalElements int              `json:"totalElements"`
		TotalPages    int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Chicken Salad", page.Content[0]["name"])

	w = do(r, http.MethodGet, "/api/recipes?page=0")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, catalog.DefaultPageSize, page.Size)
}

func TestSearch_PagingBoundsAreClamped(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	var page struct {
		Content []map[string]any `json:"content"`
		Page    int              `json:"page"`
		Size    int              `json:"size"`
	}
	w := do(r, http.MethodGet, "/api/recipes?page=-1&size=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Page)
	assert.Len(t, page.Content, 2)

	w = do(r, http.MethodGet, "/api/recipes?size=0")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Size)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Chicken Curry", page.Content[0]["name"])
}

func TestSearch_InvalidPaging(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	for _, target := range []string{"/api/recipes?page=abc", "/api/recipes?size=1.5"} {
		w := do(r, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var body common.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadRequest, body.Status)
		assert.Equal(t, "Bad Request", body.Error)
		assert.Equal(t, "/api/recipes", body.Path)
		assert.NotEmpty(t, body.Message)
	}
}

func TestSearch_BlankQueryFallsBackToAlias(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	var body []map[string]any
	w := do(r, http.MethodGet, "/api/recipes?query=%20%20&q=beef")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Beef Tacos", body[0]["name"])
}

func TestGetRecipe(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	w := do(r, http.MethodGet, "/api/recipes/2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "max-age=600, public", w.Header().Get("Cache-Control"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Beef Tacos", body["name"])

	w = do(r, http.MethodGet, "/api/recipes/42")
	require.Equal(t, http.StatusNotFound, w.Code)
	var errBody common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "Recipe not found with id: 42", errBody.Message)
	assert.Equal(t, "/api/recipes/42", errBody.Path)
}

func TestLoad(t *testing.T) {
	up := sampleUpstream()
	r, svc := setupRouter(t, up)

	up.recipes = up.recipes[:1]
	w := do(r, http.MethodPost, "/api/load")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Recipes loaded successfully!","count":1}`, w.Body.String())

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// 時間窗內重複送出
	w = do(r, http.MethodPost, "/api/load")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	up := sampleUpstream()
	r, _ := setupRouter(t, up)

	w := do(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])

	up.probeErr = errors.New("connection refused")
	w = do(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DOWN", body["status"])

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live").Code)
}

func TestNoRoute(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	w := do(r, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupRouter(t, sampleUpstream())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
