package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// DefaultCount 預設預載前幾張圖片
const DefaultCount = 6

// Info 已預載圖片的資訊
type Info struct {
	URL    string
	Format string
	Width  int
	Height int
	Bytes  int
}

// Preloader 背景下載顯示清單前幾張圖片，驗證格式後寫入快取
type Preloader struct {
	client       *resty.Client
	store        cache.Store
	count        int
	maxSizeBytes int64

	wg       sync.WaitGroup
	mu       sync.Mutex
	inflight map[string]struct{}
	warmed   map[string]Info
}

// NewPreloader 創建圖片預載服務，store 可為 nil
func NewPreloader(cfg config.PreloadConfig, store cache.Store) *Preloader {
	count := cfg.Count
	if count <= 0 {
		count = DefaultCount
	}
	return &Preloader{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetLogger(common.RestyLogger{}),
		store:        store,
		count:        count,
		maxSizeBytes: cfg.MaxSizeBytes,
		inflight:     make(map[string]struct{}),
		warmed:       make(map[string]Info),
	}
}

// Preload 對前 count 筆有圖片的食譜啟動背景下載，不等待結果
func (p *Preloader) Preload(recipes []recipe.Recipe) {
	for _, url := range p.targets(recipes) {
		p.wg.Add(1)
		go func(url string) {
			defer p.wg.Done()
			defer p.release(url)

			if _, err := p.Fetch(context.Background(), url); err != nil {
				common.LogDebug("Image preload failed", zap.String("url", url), zap.Error(err))
			}
		}(url)
	}
}

// Wait 等待所有進行中的預載結束
func (p *Preloader) Wait() {
	p.wg.Wait()
}

// Warmed 查詢圖片是否已預載
func (p *Preloader) Warmed(url string) (Info, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.warmed[url]
	return info, ok
}

// targets 取出前 count 筆的圖片網址，略過已預載或下載中的網址
func (p *Preloader) targets(recipes []recipe.Recipe) []string {
	if len(recipes) > p.count {
		recipes = recipes[:p.count]
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var urls []string
	for _, r := range recipes {
		url, ok := r.Image.Get()
		if !ok || !isRemote(url) {
			continue
		}
		if _, done := p.warmed[url]; done {
			continue
		}
		if _, busy := p.inflight[url]; busy {
			continue
		}
		p.inflight[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

func (p *Preloader) release(url string) {
	p.mu.Lock()
	delete(p.inflight, url)
	p.mu.Unlock()
}

// Fetch 下載並驗證單張圖片
func (p *Preloader) Fetch(ctx context.Context, url string) (Info, error) {
	key := cache.Key("image", url)
	if p.store != nil {
		if data, err := p.store.Get(ctx, key); err == nil {
			return p.inspect(url, data)
		}
	}

	resp, err := p.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Info{}, fmt.Errorf("failed to download image: %w", err)
	}
	if resp.IsError() {
		return Info{}, fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}

	data := resp.Body()
	info, err := p.inspect(url, data)
	if err != nil {
		return Info{}, err
	}

	if p.store != nil {
		if err := p.store.Set(ctx, key, data); err != nil {
			common.LogWarn("Failed to cache image", zap.String("url", url), zap.Error(err))
		}
	}
	return info, nil
}

// inspect 檢查大小與格式並記錄為已預載
func (p *Preloader) inspect(url string, data []byte) (Info, error) {
	// 檢查文件大小
	if p.maxSizeBytes > 0 && int64(len(data)) > p.maxSizeBytes {
		return Info{}, fmt.Errorf("image size exceeds maximum limit of %d bytes", p.maxSizeBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if !isSupportedFormat(format) {
		return Info{}, fmt.Errorf("unsupported image format: %s", format)
	}

	info := Info{URL: url, Format: format, Width: cfg.Width, Height: cfg.Height, Bytes: len(data)}
	p.mu.Lock()
	p.warmed[url] = info
	p.mu.Unlock()
	return info, nil
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
