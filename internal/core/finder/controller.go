// Package finder 持有一次搜尋工作階段的食譜結果，並推導目前顯示的清單。
//
// 篩選永遠從完整結果重新推導；排序只重排目前顯示的清單。
// 因此先排序再篩選會丟棄排序效果，先篩選再排序只重排篩選後的子集。
package finder

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// MinQueryLength 搜尋字串去除空白後的最短長度
	MinQueryLength = 3

	fallbackErrorMessage = "Failed to load recipes"
)

// ErrQueryTooShort 搜尋字串太短，未送出請求
var ErrQueryTooShort = common.NewValidationError("Please enter at least 3 characters to search")

// Fetcher 搜尋食譜的外部 HTTP 協作者
type Fetcher interface {
	Search(ctx context.Context, query string) (any, error)
}

// Preloader 顯示清單變更時預熱圖片快取
type Preloader interface {
	Preload(recipes []recipe.Recipe)
}

// StatusKind 搜尋狀態
type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusLoading StatusKind = "loading"
	StatusError   StatusKind = "error"
)

// Status 搜尋狀態與錯誤訊息
type Status struct {
	Kind    StatusKind
	Message string
}

// ViewState 控制器狀態快照，發佈後不再修改
type ViewState struct {
	AllRecipes      []recipe.Recipe
	Displayed       []recipe.Recipe
	AvailableTags   []string
	ActiveTagFilter string
	SortDirection   SortDirection
	Status          Status
	Query           string
	Searched        bool
}

// Controller 搜尋／篩選／排序控制器
type Controller struct {
	fetcher   Fetcher
	preloader Preloader

	mu    sync.Mutex
	state ViewState
	seq   uint64
}

// Option 控制器選項
type Option func(*Controller)

// WithPreloader 設定圖片預載
func WithPreloader(p Preloader) Option {
	return func(c *Controller) {
		c.preloader = p
	}
}

// NewController 創建控制器
func NewController(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		state: ViewState{
			AllRecipes:    []recipe.Recipe{},
			Displayed:     []recipe.Recipe{},
			AvailableTags: []string{},
			SortDirection: Ascending,
			Status:        Status{Kind: StatusIdle},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot 回傳目前狀態
func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Search 搜尋食譜。
// 字串太短時回傳 ErrQueryTooShort 且不改變狀態；請求失敗只記錄在狀態中，不回傳錯誤。
// 同時有多個搜尋時，只套用最後發出的那一個。
func (c *Controller) Search(ctx context.Context, query string) error {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return ErrQueryTooShort
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	next := c.state
	next.Status = Status{Kind: StatusLoading}
	next.Query = q
	c.state = next
	c.mu.Unlock()

	common.LogDebug("搜尋食譜", zap.String("query", q), zap.Uint64("seq", seq))

	data, err := c.fetcher.Search(ctx, q)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		common.LogDebug("捨棄過期的搜尋結果", zap.String("query", q), zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		next := c.state
		next.Status = Status{Kind: StatusError, Message: common.ErrorMessage(err, fallbackErrorMessage)}
		c.state = next
		c.mu.Unlock()
		common.LogWarn("搜尋失敗", zap.String("query", q), zap.Error(err))
		return nil
	}

	all := SortForSearch(recipe.NormalizeMany(data))
	next = c.state
	next.AllRecipes = all
	next.Displayed = all
	next.AvailableTags = CollectTags(all)
	next.ActiveTagFilter = ""
	// 清單為遞增，但下一次切換會套用遞減
	next.SortDirection = Descending
	next.Status = Status{Kind: StatusIdle}
	next.Searched = true
	c.state = next
	c.mu.Unlock()

	common.LogDebug("搜尋完成", zap.String("query", q), zap.Int("results", len(all)))
	c.notify(all)
	return nil
}

// ToggleSort 以目前方向重排顯示清單，然後反轉方向
func (c *Controller) ToggleSort() {
	c.mu.Lock()
	next := c.state
	next.Displayed = SortByCookTime(c.state.Displayed, c.state.SortDirection)
	next.SortDirection = c.state.SortDirection.Opposite()
	c.state = next
	c.mu.Unlock()

	c.notify(next.Displayed)
}

// FilterByTag 依標籤篩選完整結果；空字串清除篩選
func (c *Controller) FilterByTag(tag string) {
	c.mu.Lock()
	next := c.state
	next.Displayed = FilterByTag(c.state.AllRecipes, tag)
	next.ActiveTagFilter = tag
	c.state = next
	c.mu.Unlock()

	c.notify(next.Displayed)
}

func (c *Controller) notify(displayed []recipe.Recipe) {
	if c.preloader != nil {
		c.preloader.Preload(displayed)
	}
}
