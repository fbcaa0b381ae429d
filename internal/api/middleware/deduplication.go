package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-finder/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// Deduplicator 拒絕時間窗內重複送出的相同請求
type Deduplicator struct {
	window time.Duration
	mu     sync.Mutex
	seen   map[string]time.Time
	now    func() time.Time
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Handler 去重中間件，只處理 POST
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint, err := d.fingerprint(c)
		if err != nil {
			common.LogError("Failed to read request body", zap.Error(err))
			c.Next()
			return
		}

		if !d.admit(fingerprint) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				common.NewErrorResponse(http.StatusTooManyRequests, "Request too frequent", c.Request.URL.Path))
			return
		}
		c.Next()
	}
}

// fingerprint 以方法、路徑、用戶端與請求體雜湊組成指紋
func (d *Deduplicator) fingerprint(c *gin.Context) (string, error) {
	fp := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.ClientIP()
	if c.Request.Body == nil {
		return fp, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return fp, nil
	}

	hash := sha256.Sum256(body)
	return fp + ":" + hex.EncodeToString(hash[:]), nil
}

// admit 記錄指紋，時間窗內重複時回傳 false。順便清除過期紀錄。
func (d *Deduplicator) admit(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.seen[fingerprint]; ok && now.Sub(last) <= d.window {
		return false
	}
	d.seen[fingerprint] = now

	for k, t := range d.seen {
		if now.Sub(t) > 10*d.window {
			delete(d.seen, k)
		}
	}
	return true
}
