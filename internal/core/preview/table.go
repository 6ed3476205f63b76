package preview

import (
	"fmt"
	"os"
	"sort"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

// Price 價格表中的一筆包裝價格
type Price struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// PriceTable 商店 -> 食材名稱 -> 價格
type PriceTable map[string]map[string]Price

// DefaultPriceTable 內建的小型價格表
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"maxi": {
			"ground beef":  {Price: 4.44, Quantity: 1, Unit: "lb"},
			"potatoes":     {Price: 2.99, Quantity: 5, Unit: "lb"},
			"creamed corn": {Price: 0.99, Quantity: 398, Unit: "ml"},
			"milk":         {Price: 5.29, Quantity: 2, Unit: "l"},
			"flour":        {Price: 4.99, Quantity: 2.5, Unit: "kg"},
		},
		"iga": {
			"ground beef":  {Price: 5.99, Quantity: 1, Unit: "lb"},
			"potatoes":     {Price: 3.49, Quantity: 5, Unit: "lb"},
			"creamed corn": {Price: 1.29, Quantity: 398, Unit: "ml"},
			"milk":         {Price: 5.49, Quantity: 2, Unit: "l"},
		},
		"metro": {
			"ground beef": {Price: 5.49, Quantity: 454, Unit: "g"},
			"potatoes":    {Price: 3.99, Quantity: 2.27, Unit: "kg"},
			"milk":        {Price: 5.39, Quantity: 2000, Unit: "ml"},
			"flour":       {Price: 5.49, Quantity: 2.5, Unit: "kg"},
		},
	}
}

// LoadPriceTable 從 JSON 檔案讀取價格表
func LoadPriceTable(path string) (PriceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price table: %w", err)
	}
	var table PriceTable
	if err := common.ParseJSONBytes(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse price table: %w", err)
	}
	return table.normalized(), nil
}

// normalized 將食材名稱正規化以便查找
func (t PriceTable) normalized() PriceTable {
	out := make(PriceTable, len(t))
	for storeID, prices := range t {
		m := make(map[string]Price, len(prices))
		for name, p := range prices {
			m[pricing.NormalizeText(name)] = p
		}
		out[storeID] = m
	}
	return out
}

// Stores 回傳排序後的商店代碼
func (t PriceTable) Stores() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
