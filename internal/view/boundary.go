package view

import (
	"fmt"

	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// FallbackTitle 畫面渲染失敗時的標題
const FallbackTitle = "Something went wrong"

// Boundary 執行 render，發生 panic 時只以錯誤訊息取代這一區塊
func Boundary(render func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Render failure recovered", zap.Any("error", r))
			out = ErrorBannerStyle.Render(FallbackTitle + "\n" + panicMessage(r))
		}
	}()
	return render()
}

func panicMessage(r any) string {
	switch v := r.(type) {
	case error:
		if msg := v.Error(); msg != "" {
			return msg
		}
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		return v.String()
	}
	return "Unexpected error"
}
