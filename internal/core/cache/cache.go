package cache

import (
	"context"
	"fmt"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// New 依設定選擇快取實作：Redis 優先，連線失敗時退回記憶體快取
func New(ctx context.Context, cacheCfg config.CacheConfig, redisCfg config.RedisConfig) Store {
	if redisCfg.Enabled {
		rs, err := NewRedisStore(ctx, redisCfg)
		if err == nil {
			return rs
		}
		common.LogWarn("Redis unavailable, falling back to memory cache", zap.Error(err))
	}

	m := NewManager(cacheCfg)
	if m == nil {
		return nil
	}
	return m
}

// Key 組合快取鍵
func Key(kind string, parts ...any) string {
	key := KeyPrefix + kind
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}
