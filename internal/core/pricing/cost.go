package pricing

import (
	"context"
	"math"
)

const minIngredientCost = 0.01

// CostCalculator 將選定價格與配方數量換算為金額
type CostCalculator struct {
	converter *UnitConverter
	maxCost   float64
}

// NewCostCalculator 創建成本計算器
func NewCostCalculator(converter *UnitConverter, maxIngredientCost float64) *CostCalculator {
	if converter == nil {
		converter = NewUnitConverter(nil, nil)
	}
	if maxIngredientCost <= 0 {
		maxIngredientCost = DefaultLimits().MaxIngredientCost
	}
	return &CostCalculator{converter: converter, maxCost: maxIngredientCost}
}

// Cost 計算食材成本，結果介於 [0.01, 上限] 並四捨五入至分
func (c *CostCalculator) Cost(ctx context.Context, qty float64, unit string, result PricingResult, ingredientName string) float64 {
	if qty < 0 || math.IsNaN(qty) {
		qty = 0
	}

	var cost float64
	switch result.NormalizedUnit {
	case UnitCount:
		cost = result.Price * c.countOf(ctx, qty, unit, ingredientName)
	case UnitKilogram, UnitLiter:
		cost = result.Price * c.canonicalAmount(ctx, qty, unit, result.NormalizedUnit, ingredientName)
	default:
		cost = c.packageCost(ctx, qty, unit, result.Price, ingredientName)
	}
	return c.clamp(cost)
}

// countOf 配方數量換算為個數
func (c *CostCalculator) countOf(ctx context.Context, qty float64, unit, ingredientName string) float64 {
	base, ok := c.converter.ToBase(qty, unit)
	if !ok {
		return qty
	}
	g, known := c.converter.GramsPerUnit(ctx, ingredientName)
	if !known || g <= 0 {
		g = DefaultGramsPerUnit
	}
	return base.Amount / g
}

// canonicalAmount 配方數量換算為 kg 或 L
func (c *CostCalculator) canonicalAmount(ctx context.Context, qty float64, unit, target, ingredientName string) float64 {
	if !c.converter.IsCountBased(ingredientName, unit) {
		if v, ok := c.converter.ConvertTo(qty, unit, target); ok {
			return v
		}
	}
	return c.converter.CountToGrams(ctx, qty, ingredientName) / 1000
}

// packageCost 以包裝價計算所需比例
func (c *CostCalculator) packageCost(ctx context.Context, qty float64, unit string, price float64, ingredientName string) float64 {
	if c.converter.IsCountBased(ingredientName, unit) {
		if rule, ok := c.converter.ItemRule(ingredientName); ok {
			if price < rule.PerItemPriceThreshold {
				return price * qty
			}
			perItem := rule.PerItemWeight
			if g, ok := c.converter.GramsPerUnit(ctx, ingredientName); ok && g > 0 {
				perItem = g
			}
			return price * (qty * perItem / rule.PackageWeight)
		}
		if g, ok := c.converter.GramsPerUnit(ctx, ingredientName); ok && g > 0 {
			pkg := c.converter.PackageSize(ingredientName, KindMass)
			return price * (qty * g / pkg.Amount)
		}
		return price * math.Min(qty, MaxUnknownWeightPackages)
	}

	base, ok := c.converter.ToBase(qty, unit)
	if !ok {
		return price * math.Min(qty, MaxUnknownWeightPackages)
	}
	pkg := c.converter.PackageSize(ingredientName, c.converter.Kind(unit))
	if pkg.Amount <= 0 {
		return price
	}
	return price * (base.Amount / pkg.Amount)
}

func (c *CostCalculator) clamp(cost float64) float64 {
	switch {
	case math.IsNaN(cost):
		return minIngredientCost
	case math.IsInf(cost, 1), cost > c.maxCost:
		return c.maxCost
	case cost < minIngredientCost:
		return minIngredientCost
	}
	return roundTo(cost, 2)
}
