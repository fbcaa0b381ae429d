package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// fallbackMessage 無法取得任何錯誤訊息時使用
const fallbackMessage = "Network error"

// Client 食譜搜尋 API 客戶端
type Client struct {
	baseURL string
	client  *resty.Client
}

// NewClient 依設定創建客戶端
func NewClient(cfg config.ClientConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	c := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(common.RestyLogger{})

	return &Client{
		baseURL: base,
		client:  c,
	}
}

// BaseURL 回傳 API 位址，不含結尾斜線
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search 以 query 參數搜尋食譜，回傳未經處理的 JSON 內容
func (c *Client) Search(ctx context.Context, query string) (any, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		Get("/recipes")
	if err := toAPIError(resp, err); err != nil {
		common.LogWarn("Recipe search request failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, err
	}

	data, err := common.DecodeAny(resp.Body())
	if err != nil {
		return nil, common.NewError(common.ErrCodeUpstreamError, "Invalid response from recipe API", resp.StatusCode(), err)
	}
	return data, nil
}

// GetRecipe 取得單一食譜，回傳未經處理的 JSON 內容
func (c *Client) GetRecipe(ctx context.Context, id string) (any, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/recipes/{id}")
	if err := toAPIError(resp, err); err != nil {
		return nil, err
	}

	data, err := common.DecodeAny(resp.Body())
	if err != nil {
		return nil, common.NewError(common.ErrCodeUpstreamError, "Invalid response from recipe API", resp.StatusCode(), err)
	}
	return data, nil
}

// toAPIError 統一錯誤格式。
// 訊息優先順序：回應內容的 message 欄位 → 傳輸或狀態碼錯誤 → "Network error"
func toAPIError(resp *resty.Response, err error) error {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackMessage
		}
		code := common.ErrCodeNetworkError
		if errors.Is(err, context.DeadlineExceeded) {
			code = common.ErrCodeGatewayTimeout
		}
		return common.NewError(code, msg, 0, err)
	}
	if resp == nil {
		return common.NewError(common.ErrCodeNetworkError, fallbackMessage, 0, nil)
	}
	if !resp.IsError() && resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	status := resp.StatusCode()
	if msg := structuredMessage(resp.Body()); msg != "" {
		return common.NewError(codeForStatus(status), msg, status, nil)
	}
	return common.NewError(codeForStatus(status), fmt.Sprintf("Request failed with status code %d", status), status, nil)
}

// structuredMessage 讀取錯誤回應中的 message 欄位
func structuredMessage(body []byte) string {
	data, err := common.DecodeAny(body)
	if err != nil {
		return ""
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := obj["message"].(string)
	return msg
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return common.ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return common.ErrCodeTooManyRequests
	case status == http.StatusGatewayTimeout:
		return common.ErrCodeGatewayTimeout
	case status >= 500:
		return common.ErrCodeUpstreamError
	default:
		return common.ErrCodeInvalidRequest
	}
}
