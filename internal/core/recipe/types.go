package recipe

// RawRecipe 外部 API 回傳的原始食譜，欄位名稱與型別不固定
type RawRecipe = map[string]any

// Recipe 正規化後的食譜
type Recipe struct {
	ID                 Optional[string]  `json:"id"`
	Name               string            `json:"name"`
	Ingredients        []string          `json:"ingredients"`
	Instructions       []string          `json:"instructions"`
	PrepTimeMinutes    Optional[float64] `json:"prepTimeMinutes"`
	CookTimeMinutes    Optional[float64] `json:"cookTimeMinutes"`
	Servings           Optional[float64] `json:"servings"`
	Difficulty         Optional[string]  `json:"difficulty"`
	Cuisine            Optional[string]  `json:"cuisine"`
	CaloriesPerServing Optional[float64] `json:"caloriesPerServing"`
	Tags               []string          `json:"tags"`
	Image              Optional[string]  `json:"image"`
	Rating             Optional[float64] `json:"rating"`
	ReviewCount        Optional[float64] `json:"reviewCount"`
	MealType           []string          `json:"mealType"`
	UserID             Optional[string]  `json:"userId"`

	// Raw 僅供除錯，顯示邏輯不得讀取
	Raw RawRecipe `json:"-"`
}

// ToRaw 以正規欄位名稱輸出為原始格式
func (r Recipe) ToRaw() RawRecipe {
	raw := RawRecipe{
		"name":         r.Name,
		"ingredients":  toAnySlice(r.Ingredients),
		"instructions": toAnySlice(r.Instructions),
		"tags":         toAnySlice(r.Tags),
		"mealType":     toAnySlice(r.MealType),
	}
	putOptional(raw, "id", r.ID)
	putOptional(raw, "prepTimeMinutes", r.PrepTimeMinutes)
	putOptional(raw, "cookTimeMinutes", r.CookTimeMinutes)
	putOptional(raw, "servings", r.Servings)
	putOptional(raw, "difficulty", r.Difficulty)
	putOptional(raw, "cuisine", r.Cuisine)
	putOptional(raw, "caloriesPerServing", r.CaloriesPerServing)
	putOptional(raw, "image", r.Image)
	putOptional(raw, "rating", r.Rating)
	putOptional(raw, "reviewCount", r.ReviewCount)
	putOptional(raw, "userId", r.UserID)
	return raw
}

// HasTag 是否有任一標籤包含 needle（不分大小寫）
func (r Recipe) HasTag(needle string) bool {
	return containsFold(r.Tags, needle)
}

func putOptional[T any](raw RawRecipe, key string, o Optional[T]) {
	if v, ok := o.Get(); ok {
		raw[key] = v
	} else {
		raw[key] = nil
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
