package pricing

import (
	"context"
	"math"
	"sort"
	"strings"
)

// UnitKind 單位類型
type UnitKind int

const (
	KindUnknown UnitKind = iota
	KindMass
	KindVolume
	KindCount
)

func (k UnitKind) String() string {
	switch k {
	case KindMass:
		return "mass"
	case KindVolume:
		return "volume"
	case KindCount:
		return "count"
	default:
		return "unknown"
	}
}

// Quantity 標準化後的數量，Unit 為 g、ml、kg、l 或 unit
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// DefaultGramsPerUnit 無法得知單個重量時，每單位換算為 100 克
const DefaultGramsPerUnit = 100.0

// MaxUnknownWeightPackages 無單個重量時最多計算的包裝數
const MaxUnknownWeightPackages = 2.0

// UnitConverter 單位換算器
//
// 質量與體積互轉時以密度 1 (1 g ≈ 1 ml) 近似。
type UnitConverter struct {
	tables       *Tables
	equivalences *EquivalenceCache
}

// NewUnitConverter 創建單位換算器，equivalences 可為 nil
func NewUnitConverter(tables *Tables, equivalences *EquivalenceCache) *UnitConverter {
	if tables == nil {
		tables = DefaultTables()
	}
	return &UnitConverter{tables: tables, equivalences: equivalences}
}

// normalizeUnit 單位文字正規化，句點視為空白
func normalizeUnit(unit string) string {
	u := NormalizeText(unit)
	u = strings.ReplaceAll(u, ".", " ")
	return strings.Join(strings.Fields(u), " ")
}

// NormalizeUnit 回傳正規化後的單位文字
func (c *UnitConverter) NormalizeUnit(unit string) string {
	return normalizeUnit(unit)
}

// Kind 判斷單位類型
func (c *UnitConverter) Kind(unit string) UnitKind {
	u := normalizeUnit(unit)
	if _, ok := c.tables.MassUnits[u]; ok {
		return KindMass
	}
	if _, ok := c.tables.VolumeUnits[u]; ok {
		return KindVolume
	}
	for _, cu := range c.tables.CountUnits {
		if cu == u {
			return KindCount
		}
	}
	return KindUnknown
}

// IsMassOrVolume 是否為質量或體積單位
func (c *UnitConverter) IsMassOrVolume(unit string) bool {
	k := c.Kind(unit)
	return k == KindMass || k == KindVolume
}

// ToBase 換算為基礎單位（g 或 ml）
func (c *UnitConverter) ToBase(qty float64, unit string) (Quantity, bool) {
	u := normalizeUnit(unit)
	if m, ok := c.tables.MassUnits[u]; ok {
		return Quantity{Amount: qty * m, Unit: UnitGram}, true
	}
	if m, ok := c.tables.VolumeUnits[u]; ok {
		return Quantity{Amount: qty * m, Unit: UnitMilliliter}, true
	}
	return Quantity{}, false
}

// ConvertTo 將數量換算為目標單位，跨質量/體積以密度 1 近似
func (c *UnitConverter) ConvertTo(qty float64, from, to string) (float64, bool) {
	base, ok := c.ToBase(qty, from)
	if !ok {
		return 0, false
	}
	target, ok := c.ToBase(1, to)
	if !ok || target.Amount <= 0 {
		return 0, false
	}
	// g 與 ml 數值相同，直接相除即可
	return base.Amount / target.Amount, true
}

// ToCanonical 將配方數量換算為標準單位；無法換算者回傳 unit
func (c *UnitConverter) ToCanonical(qty float64, unit string) Quantity {
	if base, ok := c.ToBase(qty, unit); ok {
		return base
	}
	return Quantity{Amount: qty, Unit: UnitCount}
}

// IsCountBased 判斷食材是否以個數計算
//
// 質量/體積單位永遠優先於名稱判斷。
func (c *UnitConverter) IsCountBased(ingredientName, unit string) bool {
	switch c.Kind(unit) {
	case KindMass, KindVolume:
		return false
	case KindCount:
		return true
	}
	_, ok := matchKeyword(NormalizeText(ingredientName), c.tables.CountItems)
	return ok
}

// ItemRule 回傳食材對應的以個計價規則
func (c *UnitConverter) ItemRule(ingredientName string) (ItemRule, bool) {
	name := NormalizeText(ingredientName)
	keys := make([]string, len(c.tables.ItemRules))
	for i, r := range c.tables.ItemRules {
		keys[i] = r.Keyword
	}
	k, ok := matchKeyword(name, keys)
	if !ok {
		return ItemRule{}, false
	}
	for _, r := range c.tables.ItemRules {
		if r.Keyword == k {
			return r, true
		}
	}
	return ItemRule{}, false
}

// GramsPerUnit 單個食材的重量：換算快取 → 規則表 → 靜態重量表
func (c *UnitConverter) GramsPerUnit(ctx context.Context, ingredientName string) (float64, bool) {
	if c.equivalences != nil {
		if g, ok := c.equivalences.Resolve(ctx, ingredientName); ok {
			return g, true
		}
	}

	name := NormalizeText(ingredientName)
	rule, hasRule := c.ItemRule(name)

	weightKeys := make([]string, 0, len(c.tables.ItemWeights))
	for k := range c.tables.ItemWeights {
		weightKeys = append(weightKeys, k)
	}
	sort.Strings(weightKeys)
	wk, hasWeight := matchKeyword(name, weightKeys)

	switch {
	case hasRule && hasWeight:
		if len(wk) > len(rule.Keyword) {
			return c.tables.ItemWeights[wk], true
		}
		return rule.PerItemWeight, true
	case hasRule:
		return rule.PerItemWeight, true
	case hasWeight:
		return c.tables.ItemWeights[wk], true
	}
	return 0, false
}

// PackageSize 解析標準零售包裝尺寸（g 或 ml）
func (c *UnitConverter) PackageSize(ingredientName string, kind UnitKind) Quantity {
	name := NormalizeText(ingredientName)

	keys := make([]string, len(c.tables.PackageSizes))
	for i, p := range c.tables.PackageSizes {
		keys[i] = p.Keyword
	}
	if k, ok := matchKeyword(name, keys); ok {
		for _, p := range c.tables.PackageSizes {
			if p.Keyword == k {
				return Quantity{Amount: p.Size, Unit: p.Unit}
			}
		}
	}

	for _, cp := range c.tables.CategoryPackages {
		if _, ok := matchKeyword(name, cp.Keywords); ok {
			return Quantity{Amount: cp.Size, Unit: cp.Unit}
		}
	}

	if kind == KindVolume {
		return Quantity{Amount: 500, Unit: UnitMilliliter}
	}
	return Quantity{Amount: 500, Unit: UnitGram}
}

// CountToGrams 將個數換算為克，未知重量時使用預設值
func (c *UnitConverter) CountToGrams(ctx context.Context, qty float64, ingredientName string) float64 {
	g, ok := c.GramsPerUnit(ctx, ingredientName)
	if !ok {
		g = DefaultGramsPerUnit
	}
	return qty * g
}

// roundTo 四捨五入至指定小數位
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
