package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"

	probeTimeout = 5 * time.Second
)

// Checker 健康檢查依賴
type Checker interface {
	ProbeUpstream(ctx context.Context) error
	Ready(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// ComponentStatus 單一元件狀態
type ComponentStatus struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Components map[string]ComponentStatus `json:"components"`
	Runtime    map[string]interface{}     `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	checker     Checker
	version     string
	upstreamURL string
}

// NewHandler 創建健康檢查處理器
func NewHandler(checker Checker, version, upstreamURL string) *Handler {
	return &Handler{checker: checker, version: version, upstreamURL: upstreamURL}
}

// HealthCheck 檢查外部食譜 API 與資料庫
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"externalApi": h.externalAPI(ctx),
		"database":    h.database(ctx),
	}

	status := StatusUp
	for _, comp := range components {
		if comp.Status != StatusUp {
			status = StatusDown
		}
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Version:    h.version,
		Components: components,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("status", status),
	)

	code := http.StatusOK
	if status != StatusUp {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

func (h *Handler) externalAPI(ctx context.Context) ComponentStatus {
	details := map[string]interface{}{"url": h.upstreamURL}
	if err := h.checker.ProbeUpstream(ctx); err != nil {
		common.LogWarn("External API health check failed", zap.Error(err))
		details["error"] = err.Error()
		return ComponentStatus{Status: StatusDown, Details: details}
	}
	return ComponentStatus{Status: StatusUp, Details: details}
}

func (h *Handler) database(ctx context.Context) ComponentStatus {
	if err := h.checker.Ready(ctx); err != nil {
		return ComponentStatus{Status: StatusDown, Details: map[string]interface{}{"error": err.Error()}}
	}
	count, err := h.checker.Count(ctx)
	if err != nil {
		return ComponentStatus{Status: StatusDown, Details: map[string]interface{}{"error": err.Error()}}
	}
	return ComponentStatus{Status: StatusUp, Details: map[string]interface{}{"recipes": count}}
}

// ReadinessCheck 資料庫可用時就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.checker.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
