// Package cache 提供預覽結果的快取，支援記憶體與 Redis 兩種後端
package cache

import (
	"context"
	"fmt"
	"time"

	"grocery-pricer/internal/infrastructure/config"
	"grocery-pricer/internal/pkg/common"
)

// Cache 快取介面，未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New 依設定建立快取，停用時回傳 nil
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(Options{
			MaxSize:         cfg.MaxSize,
			TTL:             cfg.TTL,
			CleanupInterval: cfg.CleanupInterval,
		}, time.Now), nil
	case "redis":
		c, err := NewRedisCache(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
