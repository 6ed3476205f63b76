package pricing

import "time"

// Source 價格來源
type Source string

const (
	SourceUnified   Source = "unified"
	SourcePromo     Source = "promo"
	SourceReference Source = "reference"
	SourceEstimate  Source = "estimate"
)

// 標準單位
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitKilogram   = "kg"
	UnitLiter      = "l"
	UnitCount      = "unit"
)

// 明細中的價格單位標籤
const (
	PriceUnitKg    = "kg"
	PriceUnitLiter = "l"
	PriceUnitEach  = "unité"
)

// Ingredient 食材
type Ingredient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// RecipeIngredient 食譜中的一行食材（未彙總）
type RecipeIngredient struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// Recipe 食譜
type Recipe struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Ingredients    []RecipeIngredient `json:"ingredients"`
	EstimatedPrice *float64           `json:"estimated_price,omitempty"`
}

// Store 商店
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogEntry 統一價格目錄項目
type CatalogEntry struct {
	GenericProductName string  `json:"generic_product_name"`
	RegularPrice       float64 `json:"regular_price"`
	SalePrice          float64 `json:"sale_price"`
	UnitPrice          float64 `json:"unit_price"` // $/kg 或 $/L，0 表示未提供
	Quantity           float64 `json:"quantity"`
	Unit               string  `json:"unit"`
}

// EffectivePrice 優先使用特價
func (e CatalogEntry) EffectivePrice() float64 {
	if e.SalePrice > 0 {
		return e.SalePrice
	}
	return e.RegularPrice
}

// PromotionEntry 促銷傳單項目
type PromotionEntry struct {
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	ValidUntil  time.Time `json:"valid_until"`
}

// ReferenceEntry 參考價格
type ReferenceEntry struct {
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
}

// Equivalence 食材重量換算
type Equivalence struct {
	IngredientName string  `json:"ingredient_name"`
	ToQuantity     float64 `json:"to_quantity"`
	ToUnit         string  `json:"to_unit"`
}

// StoreCatalog 單一商店的所有價格來源
type StoreCatalog struct {
	Entries    []CatalogEntry
	Promotions []PromotionEntry
	References []ReferenceEntry
	// AsOf 用於判斷促銷是否仍有效，零值表示不過濾
	AsOf time.Time
}

// PricingResult 價格選擇結果
type PricingResult struct {
	IngredientName string  `json:"ingredient_name"`
	Price          float64 `json:"price"`
	Source         Source  `json:"source"`
	NormalizedUnit string  `json:"normalized_unit,omitempty"` // kg、l、unit 或空字串（包裝價）
	ProductName    string  `json:"product_name,omitempty"`
	Score          float64 `json:"score,omitempty"`
}

// IsEstimate 是否為類別估價
func (r PricingResult) IsEstimate() bool {
	return r.Source == SourceEstimate
}

// IngredientBreakdownItem 成本明細
type IngredientBreakdownItem struct {
	IngredientID   string  `json:"ingredient_id"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	UnitPrice      float64 `json:"unit_price"`
	PriceUnit      string  `json:"price_unit"`
	CalculatedCost float64 `json:"calculated_cost"`
	Source         Source  `json:"source"`
	ProductName    string  `json:"product_name,omitempty"`
}

// RecipeStorePrice 食譜在某商店某週的價格
type RecipeStorePrice struct {
	RecipeID                string                    `json:"recipe_id"`
	StoreID                 string                    `json:"store_id"`
	WeekOf                  string                    `json:"week_of"`
	TotalCost               float64                   `json:"total_cost"`
	MissingIngredientsCount int                       `json:"missing_ingredients_count"`
	IsComplete              bool                      `json:"is_complete"`
	Breakdown               []IngredientBreakdownItem `json:"breakdown"`
	CalculatedAt            time.Time                 `json:"calculated_at"`
}
