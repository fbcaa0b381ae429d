package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultName 缺少名稱時使用
const DefaultName = "Untitled"

// accessor 從原始資料取出一個候選值，ok=false 代表改試下一個別名
type accessor[T any] func(raw RawRecipe) (T, bool)

// resolve 依序嘗試每個 accessor，全部失敗時回傳 None
func resolve[T any](raw RawRecipe, chain ...accessor[T]) Optional[T] {
	for _, get := range chain {
		if v, ok := get(raw); ok {
			return Some(v)
		}
	}
	return None[T]()
}

// present 欄位存在且非 null（?? 語意）
func present(key string) accessor[any] {
	return func(raw RawRecipe) (any, bool) {
		v, ok := raw[key]
		return v, ok && v != nil
	}
}

// numberField ?? 語意的數值欄位
func numberField(key string) accessor[float64] {
	return func(raw RawRecipe) (float64, bool) {
		v, ok := present(key)(raw)
		if !ok {
			return 0, false
		}
		return toNumber(v)
	}
}

// stringField ?? 語意的字串欄位
func stringField(key string) accessor[string] {
	return func(raw RawRecipe) (string, bool) {
		v, ok := present(key)(raw)
		if !ok {
			return "", false
		}
		return toScalarString(v)
	}
}

// truthyString || 語意的字串欄位
func truthyString(key string) accessor[string] {
	return func(raw RawRecipe) (string, bool) {
		v := raw[key]
		if !truthy(v) {
			return "", false
		}
		return toScalarString(v)
	}
}

var (
	nameChain     = []accessor[string]{truthyString("name"), truthyString("title")}
	imageChain    = []accessor[string]{truthyString("image"), truthyString("imageUrl"), truthyString("thumbnail")}
	prepChain     = []accessor[float64]{numberField("prepTimeMinutes"), numberField("prepTime")}
	cookChain     = []accessor[float64]{numberField("cookTimeMinutes"), numberField("cookTime")}
	caloriesChain = []accessor[float64]{numberField("caloriesPerServing"), numberField("calories")}
	reviewsChain  = []accessor[float64]{numberField("reviewCount"), numberField("reviews")}
)

// NormalizeOne 將單筆原始資料轉為正規食譜，任何輸入都不會失敗
func NormalizeOne(raw RawRecipe) Recipe {
	if raw == nil {
		raw = RawRecipe{}
	}
	return Recipe{
		ID:                 resolve(raw, stringField("id")),
		Name:               resolve(raw, nameChain...).OrElse(DefaultName),
		Ingredients:        parseList(raw["ingredients"]),
		Instructions:       parseInstructions(raw["instructions"]),
		PrepTimeMinutes:    resolve(raw, prepChain...),
		CookTimeMinutes:    resolve(raw, cookChain...),
		Servings:           resolve(raw, numberField("servings")),
		Difficulty:         resolve(raw, stringField("difficulty")),
		Cuisine:            resolve(raw, stringField("cuisine")),
		CaloriesPerServing: resolve(raw, caloriesChain...),
		Tags:               parseTags(raw["tags"]),
		Image:              resolve(raw, imageChain...),
		Rating:             resolve(raw, numberField("rating")),
		ReviewCount:        resolve(raw, reviewsChain...),
		MealType:           parseList(raw["mealType"]),
		UserID:             resolve(raw, stringField("userId")),
		Raw:                raw,
	}
}

// NormalizeMany 接受陣列或 {recipes: [...]}，其他形狀回傳空切片
func NormalizeMany(data any) []Recipe {
	var items []any
	switch v := data.(type) {
	case []any:
		items = v
	case []RawRecipe:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case RawRecipe:
		if list, ok := v["recipes"].([]any); ok {
			items = list
		}
	}

	out := make([]Recipe, 0, len(items))
	for _, item := range items {
		raw, _ := item.(RawRecipe)
		out = append(out, NormalizeOne(raw))
	}
	return out
}

// parseList 陣列原樣保留；truthy 純量以逗號切分並去除空白；其他為空
func parseList(v any) []string {
	if list, ok := v.([]any); ok {
		return stringifyAll(list)
	}
	if list, ok := v.([]string); ok {
		return append([]string{}, list...)
	}
	if !truthy(v) {
		return []string{}
	}
	s, _ := toScalarString(v)
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseInstructions 陣列原樣保留；truthy 純量包成單一元素，不切分
func parseInstructions(v any) []string {
	if list, ok := v.([]any); ok {
		return stringifyAll(list)
	}
	if list, ok := v.([]string); ok {
		return append([]string{}, list...)
	}
	if !truthy(v) {
		return []string{}
	}
	s, _ := toScalarString(v)
	return []string{s}
}

// parseTags 與 parseList 相同，但陣列先濾掉 falsy 元素，結果不含空字串
func parseTags(v any) []string {
	if list, ok := v.([]any); ok {
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if truthy(item) {
				kept = append(kept, item)
			}
		}
		v = kept
	}
	return dropEmpty(parseList(v))
}

func dropEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringifyAll(list []any) []string {
	out := make([]string, len(list))
	for i, item := range list {
		if item == nil {
			continue
		}
		out[i], _ = toScalarString(item)
	}
	return out
}

// truthy 對應 JSON 值的真假判斷
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

// toNumber 數值或可解析為數值的字串
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}

// toScalarString 將純量轉為字串，物件與陣列以 JSON 表示
func toScalarString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case int, int64, float32:
		return fmt.Sprint(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(b), true
	}
}

func containsFold(haystack []string, needle string) bool {
	n := strings.ToLower(needle)
	for _, s := range haystack {
		if strings.Contains(strings.ToLower(s), n) {
			return true
		}
	}
	return false
}
