// Package view 將控制器狀態轉為終端機文字，不持有任何狀態。
package view

import (
	"fmt"
	"strconv"
	"strings"

	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/core/recipe"

	"github.com/charmbracelet/lipgloss"
)

const (
	// maxCardTags 卡片最多顯示的標籤數
	maxCardTags = 3
	// maxSummary 卡片步驟摘要長度
	maxSummary = 80

	SearchingText = "Searching for recipes..."
	EmptyTitle    = "No recipes found"
	EmptyHint     = "Try searching for your favorite dish!"
	missingValue  = "—"
)

// Screen 完整畫面：狀態、篩選列、清單
func Screen(s finder.ViewState) string {
	parts := []string{Status(s)}
	if bar := FilterBar(s); bar != "" {
		parts = append(parts, bar)
	}
	if s.Searched {
		parts = append(parts, Grid(s.Displayed))
	}
	return strings.TrimLeft(lipgloss.JoinVertical(lipgloss.Left, parts...), "\n")
}

// Status 搜尋中顯示提示，失敗時顯示錯誤橫幅
func Status(s finder.ViewState) string {
	switch s.Status.Kind {
	case finder.StatusLoading:
		return MutedStyle.Render(SearchingText)
	case finder.StatusError:
		return ErrorBanner(s.Status.Message)
	default:
		return ""
	}
}

// ErrorBanner 錯誤橫幅
func ErrorBanner(message string) string {
	return ErrorBannerStyle.Render("Error: " + message)
}

// FilterBar 排序按鈕與標籤列。尚無結果時不顯示。
func FilterBar(s finder.ViewState) string {
	if len(s.AllRecipes) == 0 {
		return ""
	}

	// 按鈕顯示下一次切換的效果
	label := "↑ Fast"
	if s.SortDirection == finder.Ascending {
		label = "↓ Slow"
	}
	row := []string{"Sort by Cook Time [" + label + "]"}

	for _, tag := range s.AvailableTags {
		if tag == s.ActiveTagFilter {
			row = append(row, ActiveStyle.Render("#"+tag))
		} else {
			row = append(row, TagStyle.Render("#"+tag))
		}
	}
	if s.ActiveTagFilter != "" {
		row = append(row, "✕ Clear Filter")
	}
	return strings.Join(row, "  ")
}

// Grid 食譜卡片清單，空清單時顯示空狀態
func Grid(recipes []recipe.Recipe) string {
	if len(recipes) == 0 {
		return EmptyState()
	}
	cards := make([]string, len(recipes))
	for i, r := range recipes {
		cards[i] = Card(r)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// EmptyState 沒有結果
func EmptyState() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		HeadingStyle.Render(EmptyTitle),
		MutedStyle.Render(EmptyHint),
	)
}

// Card 食譜摘要卡片
func Card(r recipe.Recipe) string {
	header := TitleStyle.Render(r.Name)
	if rating, ok := r.Rating.Get(); ok && rating != 0 {
		header += "  " + RatingStyle.Render("★ "+formatNumber(rating))
	}

	lines := []string{
		header,
		fmt.Sprintf("⏱ %s mins", optionalNumber(r.CookTimeMinutes)),
	}
	if cuisine, ok := r.Cuisine.Get(); ok {
		lines = append(lines, MutedStyle.Render("Cuisine: "+cuisine))
	}
	if summary := truncate(strings.Join(r.Instructions, " "), maxSummary); summary != "" {
		lines = append(lines, summary)
	}
	if tags := cardTags(r.Tags); tags != "" {
		lines = append(lines, tags)
	}
	if servings, ok := r.Servings.Get(); ok && servings != 0 {
		lines = append(lines, "Servings: "+formatNumber(servings))
	}

	return CardStyle.Render(strings.Join(lines, "\n"))
}

// Detail 食譜詳細內容
func Detail(r recipe.Recipe) string {
	lines := []string{TitleStyle.Render(r.Name)}

	if rating, ok := r.Rating.Get(); ok && rating != 0 {
		line := "★ " + formatNumber(rating)
		if reviews, ok := r.ReviewCount.Get(); ok && reviews > 0 {
			line += fmt.Sprintf(" (%s)", formatNumber(reviews))
		}
		lines = append(lines, RatingStyle.Render(line))
	}
	if cuisine, ok := r.Cuisine.Get(); ok {
		lines = append(lines, "Cuisine: "+cuisine)
	}

	// 準備時間優先，缺少時使用烹調時間
	total := r.PrepTimeMinutes
	if !total.IsSet() {
		total = r.CookTimeMinutes
	}
	facts := []string{fmt.Sprintf("⏱ %s mins", optionalNumber(total))}
	if servings, ok := r.Servings.Get(); ok && servings != 0 {
		facts = append(facts, formatNumber(servings)+" servings")
	}
	if difficulty, ok := r.Difficulty.Get(); ok && difficulty != "" {
		facts = append(facts, difficulty)
	}
	if calories, ok := r.CaloriesPerServing.Get(); ok && calories != 0 {
		facts = append(facts, formatNumber(calories)+" kcal")
	}
	lines = append(lines, strings.Join(facts, " · "))

	if len(r.Tags) > 0 {
		lines = append(lines, TagStyle.Render("#"+strings.Join(r.Tags, " #")))
	}

	lines = append(lines, "", HeadingStyle.Render("Ingredients"))
	for _, ing := range r.Ingredients {
		lines = append(lines, "• "+ing)
	}

	lines = append(lines, "", HeadingStyle.Render("Instructions"))
	for i, step := range r.Instructions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}

	if len(r.MealType) > 0 {
		lines = append(lines, "", "Meal Type: "+strings.Join(r.MealType, ", "))
	}

	return CardStyle.Render(strings.Join(lines, "\n"))
}

func cardTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	shown := tags
	if len(shown) > maxCardTags {
		shown = shown[:maxCardTags]
	}
	out := TagStyle.Render("#" + strings.Join(shown, " #"))
	if extra := len(tags) - len(shown); extra > 0 {
		out += MutedStyle.Render(fmt.Sprintf(" +%d", extra))
	}
	return out
}

func optionalNumber(o recipe.Optional[float64]) string {
	if v, ok := o.Get(); ok {
		return formatNumber(v)
	}
	return missingValue
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
