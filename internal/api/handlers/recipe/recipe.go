package recipe

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"recipe-finder/internal/core/catalog"
	recipeModel "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	listCacheControl   = "max-age=300, public"
	detailCacheControl = "max-age=600, public"
)

// Catalog 食譜目錄操作
type Catalog interface {
	Load(ctx context.Context) (int, error)
	List(ctx context.Context, query string) ([]recipeModel.Recipe, error)
	Page(ctx context.Context, query string, page, size int) (catalog.PageResult, error)
	Get(ctx context.Context, id string) (recipeModel.Recipe, error)
}

// LoadResponse 重新載入結果
type LoadResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Handler 食譜處理程序
type Handler struct {
	catalog Catalog
}

// NewHandler 創建新的食譜處理程序
func NewHandler(c Catalog) *Handler {
	return &Handler{catalog: c}
}

// HandleSearch GET /api/recipes?query=|q=&page=&size=
// 未帶 page 與 size 時回傳陣列，否則回傳分頁結果
func (h *Handler) HandleSearch(c *gin.Context) {
	requestID := ensureRequestID(c)

	query := searchQuery(c)

	pageParam, hasPage := c.GetQuery("page")
	sizeParam, hasSize := c.GetQuery("size")

	common.LogInfo("開始處理食譜搜尋請求",
		zap.String("request_id", requestID),
		zap.String("query", query),
		zap.String("page", pageParam),
		zap.String("size", sizeParam),
	)

	if !hasPage && !hasSize {
		recipes, err := h.catalog.List(c.Request.Context(), query)
		if err != nil {
			respondError(c, requestID, err)
			return
		}
		c.Header("Cache-Control", listCacheControl)
		c.JSON(http.StatusOK, recipes)
		return
	}

	page, err := intParam(pageParam, 0, "page")
	if err != nil {
		respondError(c, requestID, err)
		return
	}
	size, err := intParam(sizeParam, catalog.DefaultPageSize, "size")
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	result, err := h.catalog.Page(c.Request.Context(), query, page, size)
	if err != nil {
		respondError(c, requestID, err)
		return
	}
	c.Header("Cache-Control", listCacheControl)
	c.JSON(http.StatusOK, result)
}

// HandleGet GET /api/recipes/:id
func (h *Handler) HandleGet(c *gin.Context) {
	requestID := ensureRequestID(c)
	id := c.Param("id")

	r, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, requestID, err)
		return
	}
	c.Header("Cache-Control", detailCacheControl)
	c.JSON(http.StatusOK, r)
}

// HandleLoad POST /api/load
func (h *Handler) HandleLoad(c *gin.Context) {
	requestID := ensureRequestID(c)

	count, err := h.catalog.Load(c.Request.Context())
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	common.LogInfo("食譜重新載入完成",
		zap.String("request_id", requestID),
		zap.Int("count", count),
	)
	c.JSON(http.StatusOK, LoadResponse{Message: "Recipes loaded successfully!", Count: count})
}

// intParam 解析整數查詢參數，空字串使用預設值
// searchQuery 取 query 參數，空白時改用別名 q
func searchQuery(c *gin.Context) string {
	if query := strings.TrimSpace(c.Query("query")); query != "" {
		return query
	}
	return strings.TrimSpace(c.Query("q"))
}

func intParam(raw string, fallback int, name string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, common.NewValidationError(name + " must be an integer")
	}
	return n, nil
}
