// Package preview 提供同步的簡化價格預覽，只做質量/體積換算
package preview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"grocery-pricer/internal/core/cache"
	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"

	"go.uber.org/zap"
)

// MsgNoPrice 允許的商店都沒有價格時的錯誤訊息
const MsgNoPrice = "no price available"

// MsgIncompatibleUnit 單位無法與價格表換算時的錯誤訊息
const MsgIncompatibleUnit = "incompatible unit"

// Line 預覽請求中的一行食材
type Line struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Request 預覽請求
type Request struct {
	RecipeName  string   `json:"recipe_name,omitempty"`
	Ingredients []Line   `json:"ingredients" binding:"required,min=1,dive"`
	Stores      []string `json:"stores,omitempty"`
}

// Item 單一食材在某商店的費用
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Cost     float64 `json:"cost"`
}

// StoreTotal 單一商店的總價
type StoreTotal struct {
	StoreID    string   `json:"store_id"`
	Total      float64  `json:"total"`
	IsComplete bool     `json:"is_complete"`
	Items      []Item   `json:"items"`
	Missing    []string `json:"missing,omitempty"`
}

// IngredientError 食材層級的錯誤
type IngredientError struct {
	Ingredient string `json:"ingredient"`
	Message    string `json:"message"`
}

// Response 預覽結果
type Response struct {
	RecipeName    string            `json:"recipe_name,omitempty"`
	Stores        []StoreTotal      `json:"stores"`
	CheapestStore string            `json:"cheapest_store,omitempty"`
	CheapestTotal float64           `json:"cheapest_total,omitempty"`
	Errors        []IngredientError `json:"errors,omitempty"`
	CacheHit      bool              `json:"cache_hit"`
}

// Service 預覽服務
type Service struct {
	converter   *pricing.UnitConverter
	table       PriceTable
	excluded    map[string]bool
	cache       cache.Cache
	fingerprint string
}

// NewService 創建預覽服務，table 為 nil 時使用內建價格表，c 可為 nil
func NewService(table PriceTable, excludedStores []string, c cache.Cache) *Service {
	if table == nil {
		table = DefaultPriceTable()
	}
	table = table.normalized()

	excluded := make(map[string]bool, len(excludedStores))
	for _, id := range excludedStores {
		excluded[id] = true
	}

	fp, err := common.ToJSON(table)
	if err != nil {
		fp = strings.Join(table.Stores(), ",")
	}

	return &Service{
		converter:   pricing.NewUnitConverter(nil, nil),
		table:       table,
		excluded:    excluded,
		cache:       c,
		fingerprint: common.HashString(fp),
	}
}

// AllowedStores 回傳可用於預覽的商店
func (s *Service) AllowedStores(requested []string) []string {
	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		want[id] = true
	}

	var ids []string
	for _, id := range s.table.Stores() {
		if s.excluded[id] {
			continue
		}
		if len(want) > 0 && !want[id] {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Preview 計算各商店總價與最便宜的商店
func (s *Service) Preview(ctx context.Context, req Request) (*Response, error) {
	if len(req.Ingredients) == 0 {
		return nil, common.NewValidationError("ingredients must not be empty")
	}
	for i, line := range req.Ingredients {
		if strings.TrimSpace(line.Name) == "" {
			return nil, common.NewValidationError(fmt.Sprintf("ingredient %d has no name", i))
		}
		if line.Quantity < 0 || math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
			return nil, common.NewValidationError(fmt.Sprintf("ingredient %q has an invalid quantity", line.Name))
		}
	}

	key, err := s.cacheKey(req)
	if err == nil && s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var cached Response
			if err := common.ParseJSONBytes(data, &cached); err == nil {
				cached.CacheHit = true
				return &cached, nil
			}
		} else if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取預覽快取失敗", zap.Error(err))
		}
	}

	resp := s.compute(req)

	if key != "" && s.cache != nil {
		if data, err := common.ToJSON(resp); err == nil {
			if err := s.cache.Set(ctx, key, []byte(data)); err != nil {
				common.LogWarn("寫入預覽快取失敗", zap.Error(err))
			}
		}
	}
	return resp, nil
}

// cacheKey 以請求內容與價格表指紋產生快取鍵
func (s *Service) cacheKey(req Request) (string, error) {
	req.Stores = append([]string(nil), req.Stores...)
	sort.Strings(req.Stores)
	payload, err := common.ToJSON(req)
	if err != nil {
		return "", err
	}
	return common.HashString(s.fingerprint + ":" + payload), nil
}

func (s *Service) compute(req Request) *Response {
	resp := &Response{RecipeName: req.RecipeName, Stores: []StoreTotal{}}
	stores := s.AllowedStores(req.Stores)

	// priced[i] 記錄第 i 行是否至少有一家商店可計價
	priced := make([]bool, len(req.Ingredients))
	unitErr := make([]bool, len(req.Ingredients))

	for _, storeID := range stores {
		total := StoreTotal{StoreID: storeID, Items: []Item{}}
		prices := s.table[storeID]
		for i, line := range req.Ingredients {
			p, ok := prices[pricing.NormalizeText(line.Name)]
			if !ok || p.Price <= 0 || p.Quantity <= 0 {
				total.Missing = append(total.Missing, line.Name)
				continue
			}
			cost, ok := s.lineCost(line, p)
			if !ok {
				unitErr[i] = true
				total.Missing = append(total.Missing, line.Name)
				continue
			}
			priced[i] = true
			total.Total += cost
			total.Items = append(total.Items, Item{Name: line.Name, Quantity: line.Quantity, Unit: line.Unit, Cost: cost})
		}
		total.Total = math.Round(total.Total*100) / 100
		total.IsComplete = len(total.Missing) == 0 && total.Total > 0
		resp.Stores = append(resp.Stores, total)
	}

	for i, line := range req.Ingredients {
		if priced[i] {
			continue
		}
		msg := MsgNoPrice
		if unitErr[i] {
			msg = MsgIncompatibleUnit
		}
		resp.Errors = append(resp.Errors, IngredientError{Ingredient: line.Name, Message: msg})
	}

	for _, st := range resp.Stores {
		if !st.IsComplete {
			continue
		}
		if resp.CheapestStore == "" || st.Total < resp.CheapestTotal {
			resp.CheapestStore = st.StoreID
			resp.CheapestTotal = st.Total
		}
	}
	return resp
}

// lineCost 依包裝價格比例計算費用，只接受質量/體積或相同單位
func (s *Service) lineCost(line Line, p Price) (float64, bool) {
	var amount float64
	switch {
	case s.converter.IsMassOrVolume(line.Unit) && s.converter.IsMassOrVolume(p.Unit):
		v, ok := s.converter.ConvertTo(line.Quantity, line.Unit, p.Unit)
		if !ok {
			return 0, false
		}
		amount = v
	case s.converter.NormalizeUnit(line.Unit) == s.converter.NormalizeUnit(p.Unit):
		amount = line.Quantity
	default:
		return 0, false
	}
	cost := p.Price * amount / p.Quantity
	return math.Round(cost*100) / 100, true
}
