package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 每個 window 最多 requests 次請求
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.tokens += now.Sub(rl.lastTime).Seconds() * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastTime = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idle 距上次請求超過 window 的限流器，令牌已補滿，可安全移除
func (rl *RateLimiter) idle(now time.Time, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return now.Sub(rl.lastTime) >= window
}

// IPRateLimiter 每個用戶端 IP 一個令牌桶
type IPRateLimiter struct {
	requests  int
	window    time.Duration
	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter 每個 IP 每個 window 最多 requests 次請求
func NewIPRateLimiter(requests int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		requests:  requests,
		window:    window,
		limiters:  make(map[string]*RateLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow 檢查該 IP 是否允許請求
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}

// Len 目前追蹤中的 IP 數
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// limiterFor 取得或建立 IP 的限流器。每個 window 清除一次閒置的限流器。
func (l *IPRateLimiter) limiterFor(ip string) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for k, rl := range l.limiters {
			if rl.idle(now, l.window) {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		rl.now = l.now
		rl.lastTime = now
		l.limiters[ip] = rl
	}
	return rl
}

// Handler 限流中間件
func (l *IPRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				common.NewErrorResponse(http.StatusTooManyRequests, "Too many requests", c.Request.URL.Path))
			return
		}
		c.Next()
	}
}

// RateLimit 依用戶端 IP 限流
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewIPRateLimiter(requests, window).Handler()
}
