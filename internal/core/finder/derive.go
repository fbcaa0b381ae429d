package finder

import (
	"math"
	"slices"

	"recipe-finder/internal/core/recipe"
)

// SortDirection 烹飪時間排序方向
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Opposite 回傳相反方向
func (d SortDirection) Opposite() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortForSearch 搜尋結果的預設排序：烹飪時間遞增，未知時間排最後（穩定排序）
func SortForSearch(recipes []recipe.Recipe) []recipe.Recipe {
	out := slices.Clone(recipes)
	slices.SortStableFunc(out, func(a, b recipe.Recipe) int {
		at := a.CookTimeMinutes.OrElse(math.Inf(1))
		bt := b.CookTimeMinutes.OrElse(math.Inf(1))
		switch {
		case at < bt:
			return -1
		case at > bt:
			return 1
		default:
			return 0
		}
	})
	return out
}

// SortByCookTime 以數值相減比較烹飪時間。
// 未知時間視為 NaN，與任何值比較皆為相等，其相對位置不保證。
func SortByCookTime(recipes []recipe.Recipe, dir SortDirection) []recipe.Recipe {
	out := slices.Clone(recipes)
	slices.SortStableFunc(out, func(a, b recipe.Recipe) int {
		diff := cookTime(a) - cookTime(b)
		if dir == Descending {
			diff = -diff
		}
		switch {
		case diff < 0:
			return -1
		case diff > 0:
			return 1
		default:
			return 0
		}
	})
	return out
}

// FilterByTag 從完整結果中篩選標籤包含 tag 的食譜（不分大小寫）；tag 為空時回傳完整結果
func FilterByTag(all []recipe.Recipe, tag string) []recipe.Recipe {
	if tag == "" {
		return slices.Clone(all)
	}
	out := make([]recipe.Recipe, 0, len(all))
	for _, r := range all {
		if r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out
}

// CollectTags 依首次出現順序收集不重複的標籤
func CollectTags(recipes []recipe.Recipe) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, r := range recipes {
		for _, t := range r.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

func cookTime(r recipe.Recipe) float64 {
	return r.CookTimeMinutes.OrElse(math.NaN())
}
