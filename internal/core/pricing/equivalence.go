package pricing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"grocery-pricer/internal/pkg/common"
)

// DefaultEquivalenceTTL 換算快取預設有效期
const DefaultEquivalenceTTL = 5 * time.Minute

// EquivalenceLoader 從外部來源載入所有重量換算
type EquivalenceLoader func(ctx context.Context) ([]Equivalence, error)

// EquivalenceCache 食材名稱 → 單個重量（克）的快取
type EquivalenceCache struct {
	loader EquivalenceLoader
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	grams    map[string]float64
	keys     []string
	loadedAt time.Time
}

// NewEquivalenceCache 創建換算快取，ttl <= 0 時使用預設值，now 為 nil 時使用 time.Now
func NewEquivalenceCache(loader EquivalenceLoader, ttl time.Duration, now func() time.Time) *EquivalenceCache {
	if ttl <= 0 {
		ttl = DefaultEquivalenceTTL
	}
	if now == nil {
		now = time.Now
	}
	return &EquivalenceCache{
		loader: loader,
		ttl:    ttl,
		now:    now,
		grams:  make(map[string]float64),
	}
}

// Len 目前快取的項目數
func (c *EquivalenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grams)
}

// stale 從未成功載入或已超過 TTL；成功但沒有可用項目的載入也算已載入
func (c *EquivalenceCache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt.IsZero() || c.now().Sub(c.loadedAt) > c.ttl
}

// Refresh 重新載入整個映射，失敗時保留舊資料
func (c *EquivalenceCache) Refresh(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	items, err := c.loader(ctx)
	if err != nil {
		common.LogWarn("重量換算載入失敗，沿用舊資料", zap.Error(err))
		return err
	}

	grams := make(map[string]float64, len(items))
	for _, eq := range items {
		if eq.ToQuantity <= 0 {
			continue
		}
		var factor float64
		switch normalizeUnit(eq.ToUnit) {
		case "g", "gr", "gramme", "grammes", "gram", "grams":
			factor = 1
		case "kg", "kilogramme", "kilogrammes", "kilogram", "kilograms":
			factor = 1000
		default:
			continue
		}
		name := NormalizeText(eq.IngredientName)
		if name == "" {
			continue
		}
		grams[name] = eq.ToQuantity * factor
	}

	keys := make([]string, 0, len(grams))
	for k := range grams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c.mu.Lock()
	c.grams = grams
	c.keys = keys
	c.loadedAt = c.now()
	c.mu.Unlock()

	common.LogDebug("重量換算已更新", zap.Int("count", len(grams)))
	return nil
}

// Resolve 查詢食材的單個重量，必要時先刷新
func (c *EquivalenceCache) Resolve(ctx context.Context, ingredientName string) (float64, bool) {
	if c.stale() {
		_ = c.Refresh(ctx)
	}

	name := NormalizeText(ingredientName)
	if name == "" {
		return 0, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if g, ok := c.grams[name]; ok {
		return g, true
	}
	for _, k := range c.keys {
		if strings.Contains(name, k) || strings.Contains(k, name) {
			return c.grams[k], true
		}
	}
	return 0, false
}
