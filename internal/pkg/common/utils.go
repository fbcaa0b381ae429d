package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成請求 ID
func GenerateUUID() string {
	return uuid.New().String()
}
