package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Upstream 外部食譜來源
type Upstream interface {
	Fetch(ctx context.Context) ([]recipe.Recipe, error)
	Probe(ctx context.Context) error
}

// Loader 從外部食譜 API 下載完整目錄
type Loader struct {
	url    string
	client *resty.Client
	probe  *resty.Client
}

// NewLoader 創建下載器。失敗時最多嘗試 RetryMaxAttempts 次，等待時間從 RetryDelay 起倍增。
func NewLoader(cfg config.UpstreamConfig) *Loader {
	attempts := cfg.RetryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetLogger(common.RestyLogger{}).
		SetRetryCount(attempts - 1).
		SetRetryWaitTime(cfg.RetryDelay).
		SetRetryMaxWaitTime(cfg.RetryDelay << uint(attempts)).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	probe := resty.New().
		SetTimeout(cfg.Timeout).
		SetLogger(common.RestyLogger{})

	return &Loader{url: cfg.URL, client: c, probe: probe}
}

// Fetch 下載並正規化全部食譜。回應中沒有食譜時回傳空清單。
func (l *Loader) Fetch(ctx context.Context) ([]recipe.Recipe, error) {
	start := time.Now()
	resp, err := l.client.R().
		SetContext(ctx).
		Get(l.url)
	if err == nil && resp.IsError() {
		err = common.NewError(common.ErrCodeUpstreamError,
			fmt.Sprintf("Request failed with status code %d", resp.StatusCode()), resp.StatusCode(), nil)
	}
	if err != nil {
		common.LogUpstreamCall(l.url, time.Since(start), 0, err)
		return nil, fmt.Errorf("fetching recipes from %s: %w", l.url, err)
	}

	data, err := common.DecodeAny(resp.Body())
	if err != nil {
		common.LogUpstreamCall(l.url, time.Since(start), 0, err)
		return nil, common.NewError(common.ErrCodeUpstreamError, "Invalid response from recipe API", resp.StatusCode(), err)
	}

	recipes := recipe.NormalizeMany(data)
	common.LogUpstreamCall(l.url, time.Since(start), len(recipes), nil)
	return recipes, nil
}

// Probe 檢查外部 API 是否可連線，不重試
func (l *Loader) Probe(ctx context.Context) error {
	resp, err := l.probe.R().
		SetContext(ctx).
		Get(l.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("upstream returned status %d", resp.StatusCode())
	}
	return nil
}
