package finder

import (
	"sync"
	"time"
)

// DefaultDebounce 搜尋輸入的預設延遲
const DefaultDebounce = 300 * time.Millisecond

// Debouncer 在最後一次呼叫後經過 delay 才執行
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer 創建 Debouncer，delay <= 0 時使用預設值
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Call 取消尚未執行的呼叫並重新計時
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop 取消尚未執行的呼叫
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
