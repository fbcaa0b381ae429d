package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional 表示「有值」或「未設定」，未設定時序列化為 null
type Optional[T any] struct {
	value T
	set   bool
}

// Some 建立有值的 Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None 建立未設定的 Optional
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get 回傳值與是否存在
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet 是否有值
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse 未設定時回傳 fallback
func (o Optional[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// String 未設定時為 "-"
func (o Optional[T]) String() string {
	if !o.set {
		return "-"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON 實現 json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON 實現 json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
