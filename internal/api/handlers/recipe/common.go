package recipe

import (
	"errors"
	"net/http"

	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ensureRequestID 取得或產生請求 ID
func ensureRequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondError 將錯誤轉為統一的錯誤響應
func respondError(c *gin.Context, requestID string, err error) {
	status := statusFor(err)
	message := common.ErrorMessage(err, http.StatusText(status))
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "An unexpected error occurred"
	} else {
		common.LogWarn("請求無效",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("message", message),
		)
	}
	c.AbortWithStatusJSON(status, common.NewErrorResponse(status, message, c.Request.URL.Path))
}

func statusFor(err error) int {
	if common.IsValidationError(err) {
		return http.StatusBadRequest
	}
	var ce *common.CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}
