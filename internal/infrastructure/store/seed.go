// Package store 提供食譜、商店目錄與計算結果的儲存實作
package store

import (
	"fmt"
	"os"
	"time"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

// CatalogSeed 單一商店的價格資料
type CatalogSeed struct {
	Entries    []pricing.CatalogEntry   `json:"entries"`
	Promotions []pricing.PromotionEntry `json:"promotions"`
	References []pricing.ReferenceEntry `json:"references"`
}

// Seed 初始資料
type Seed struct {
	Ingredients  []pricing.Ingredient   `json:"ingredients"`
	Recipes      []pricing.Recipe       `json:"recipes"`
	Stores       []pricing.Store        `json:"stores"`
	Catalogs     map[string]CatalogSeed `json:"catalogs"`
	Equivalences []pricing.Equivalence  `json:"equivalences"`
}

// LoadSeedFile 從 JSON 檔案讀取初始資料
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := common.ParseJSONBytesStrict(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

func rowKey(recipeID, storeID, weekOf string) string {
	return recipeID + "|" + storeID + "|" + weekOf
}

func sameDayOrLater(t, asOf time.Time) bool {
	if t.IsZero() || asOf.IsZero() {
		return true
	}
	y, m, d := asOf.Date()
	return !t.Before(time.Date(y, m, d, 0, 0, 0, 0, asOf.Location()))
}
