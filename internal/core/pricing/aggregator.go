package pricing

import (
	"context"
	"math"
	"time"
)

// Limits 金額上限設定
type Limits struct {
	DefaultCap        float64 `mapstructure:"default_cap" json:"default_cap"`
	MaxIngredientCost float64 `mapstructure:"max_ingredient_cost" json:"max_ingredient_cost"`
	MaxRecipeTotal    float64 `mapstructure:"max_recipe_total" json:"max_recipe_total"`
}

// DefaultLimits 預設上限
func DefaultLimits() Limits {
	return Limits{
		DefaultCap:        50,
		MaxIngredientCost: 100,
		MaxRecipeTotal:    500,
	}
}

// Engine 定價引擎，負責單一食譜在單一商店的價格彙總
type Engine struct {
	converter  *UnitConverter
	matcher    *ProductMatcher
	selector   *PriceSelector
	calculator *CostCalculator
	limits     Limits
}

// NewEngine 創建定價引擎，tables 與 equivalences 可為 nil
func NewEngine(tables *Tables, equivalences *EquivalenceCache, limits Limits) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	def := DefaultLimits()
	if limits.DefaultCap <= 0 {
		limits.DefaultCap = def.DefaultCap
	}
	if limits.MaxIngredientCost <= 0 {
		limits.MaxIngredientCost = def.MaxIngredientCost
	}
	if limits.MaxRecipeTotal <= 0 {
		limits.MaxRecipeTotal = def.MaxRecipeTotal
	}

	converter := NewUnitConverter(tables, equivalences)
	matcher := NewProductMatcher(tables)
	return &Engine{
		converter:  converter,
		matcher:    matcher,
		selector:   NewPriceSelector(tables, matcher, converter, limits.DefaultCap),
		calculator: NewCostCalculator(converter, limits.MaxIngredientCost),
		limits:     limits,
	}
}

// Converter 回傳單位換算器
func (e *Engine) Converter() *UnitConverter { return e.converter }

// Matcher 回傳商品比對器
func (e *Engine) Matcher() *ProductMatcher { return e.matcher }

// Selector 回傳價格選擇器
func (e *Engine) Selector() *PriceSelector { return e.selector }

// Calculator 回傳成本計算器
func (e *Engine) Calculator() *CostCalculator { return e.calculator }

// Limits 回傳目前的上限設定
func (e *Engine) Limits() Limits { return e.limits }

type aggregatedLine struct {
	ingredientID string
	quantity     float64
	unit         string
}

// aggregateLines 依食材 ID 合併重複行，保留首次出現的順序與單位
func aggregateLines(lines []RecipeIngredient) []aggregatedLine {
	index := make(map[string]int, len(lines))
	out := make([]aggregatedLine, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity
		if qty < 0 || math.IsNaN(qty) {
			qty = 0
		}
		if i, ok := index[l.IngredientID]; ok {
			out[i].quantity += qty
			continue
		}
		index[l.IngredientID] = len(out)
		out = append(out, aggregatedLine{ingredientID: l.IngredientID, quantity: qty, unit: l.Unit})
	}
	return out
}

// PriceRecipe 計算食譜在指定商店的價格與明細
func (e *Engine) PriceRecipe(ctx context.Context, recipe Recipe, ingredients map[string]Ingredient, storeID, weekOf string, catalog StoreCatalog, now time.Time) RecipeStorePrice {
	lines := aggregateLines(recipe.Ingredients)
	breakdown := make([]IngredientBreakdownItem, 0, len(lines))

	var total float64
	missing := 0
	for _, line := range lines {
		ing, ok := ingredients[line.ingredientID]
		if !ok {
			ing = Ingredient{ID: line.ingredientID, Name: line.ingredientID}
		}

		result := e.selector.Select(ing.Name, ing.Category, catalog)
		cost := e.calculator.Cost(ctx, line.quantity, line.unit, result, ing.Name)
		if result.IsEstimate() {
			missing++
		}
		total += cost

		breakdown = append(breakdown, IngredientBreakdownItem{
			IngredientID:   line.ingredientID,
			Name:           ing.Name,
			Quantity:       line.quantity,
			Unit:           line.unit,
			UnitPrice:      roundTo(result.Price, 2),
			PriceUnit:      e.priceUnitLabel(result, line.unit),
			CalculatedCost: cost,
			Source:         result.Source,
			ProductName:    result.ProductName,
		})
	}

	total = roundTo(total, 2)
	if total > e.limits.MaxRecipeTotal {
		total = e.limits.MaxRecipeTotal
	}

	return RecipeStorePrice{
		RecipeID:                recipe.ID,
		StoreID:                 storeID,
		WeekOf:                  weekOf,
		TotalCost:               total,
		MissingIngredientsCount: missing,
		IsComplete:              missing == 0 && total > 0,
		Breakdown:               breakdown,
		CalculatedAt:            now,
	}
}

// priceUnitLabel 明細價格單位：kg、l 或 unité
func (e *Engine) priceUnitLabel(result PricingResult, recipeUnit string) string {
	switch result.NormalizedUnit {
	case UnitKilogram:
		return PriceUnitKg
	case UnitLiter:
		return PriceUnitLiter
	case UnitCount:
		return PriceUnitEach
	}
	switch e.converter.Kind(recipeUnit) {
	case KindMass:
		return PriceUnitKg
	case KindVolume:
		return PriceUnitLiter
	}
	return PriceUnitEach
}
