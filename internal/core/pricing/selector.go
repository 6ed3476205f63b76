package pricing

import "time"

const exactMatchScore = 2.0

// PriceSelector 依優先順序選擇食材價格：統一目錄 → 促銷 → 參考價 → 類別估價
type PriceSelector struct {
	tables     *Tables
	matcher    *ProductMatcher
	converter  *UnitConverter
	defaultCap float64
	capKeys    []string
	estKeys    []string
}

// NewPriceSelector 創建價格選擇器
func NewPriceSelector(tables *Tables, matcher *ProductMatcher, converter *UnitConverter, defaultCap float64) *PriceSelector {
	if tables == nil {
		tables = DefaultTables()
	}
	if matcher == nil {
		matcher = NewProductMatcher(tables)
	}
	if converter == nil {
		converter = NewUnitConverter(tables, nil)
	}
	if defaultCap <= 0 {
		defaultCap = DefaultLimits().DefaultCap
	}
	capKeys := make([]string, len(tables.PriceCaps))
	for i, c := range tables.PriceCaps {
		capKeys[i] = c.Keyword
	}
	estKeys := make([]string, len(tables.CategoryEstimates))
	for i, e := range tables.CategoryEstimates {
		estKeys[i] = e.Keyword
	}
	return &PriceSelector{
		tables:     tables,
		matcher:    matcher,
		converter:  converter,
		defaultCap: defaultCap,
		capKeys:    capKeys,
		estKeys:    estKeys,
	}
}

// Cap 食材單價上限
func (s *PriceSelector) Cap(ingredientName string) float64 {
	k, ok := matchKeyword(NormalizeText(ingredientName), s.capKeys)
	if !ok {
		return s.defaultCap
	}
	for _, c := range s.tables.PriceCaps {
		if c.Keyword == k {
			return c.MaxPrice
		}
	}
	return s.defaultCap
}

// Select 選擇價格，永遠回傳可用結果
func (s *PriceSelector) Select(ingredientName, category string, catalog StoreCatalog) PricingResult {
	limit := s.Cap(ingredientName)

	if r, ok := s.fromUnified(ingredientName, catalog.Entries, limit); ok {
		return r
	}
	if r, ok := s.fromPromotions(ingredientName, catalog.Promotions, catalog.AsOf, limit); ok {
		return r
	}
	if r, ok := s.fromReferences(ingredientName, catalog.References, limit); ok {
		return r
	}
	return s.Estimate(ingredientName, category)
}

// Estimate 類別估價，受食材上限約束
func (s *PriceSelector) Estimate(ingredientName, category string) PricingResult {
	price := s.tables.DefaultEstimate
	key, ok := matchKeyword(NormalizeText(category), s.estKeys)
	if !ok {
		key, ok = matchKeyword(NormalizeText(ingredientName), s.estKeys)
	}
	if ok {
		for _, e := range s.tables.CategoryEstimates {
			if e.Keyword == key {
				price = e.Price
				break
			}
		}
	}
	if limit := s.Cap(ingredientName); price > limit {
		price = limit
	}
	return PricingResult{
		IngredientName: ingredientName,
		Price:          price,
		Source:         SourceEstimate,
	}
}

// unitPrice 計算目錄項目的標準單價及其單位
func (s *PriceSelector) unitPrice(e CatalogEntry) (float64, string, bool) {
	price := e.EffectivePrice()
	if price <= 0 {
		return 0, "", false
	}
	kind := s.converter.Kind(e.Unit)

	if e.UnitPrice > 0 {
		if kind == KindVolume {
			return e.UnitPrice, UnitLiter, true
		}
		return e.UnitPrice, UnitKilogram, true
	}
	if e.Quantity <= 0 {
		return 0, "", false
	}

	switch kind {
	case KindMass, KindVolume:
		base, ok := s.converter.ToBase(e.Quantity, e.Unit)
		if !ok || base.Amount <= 0 {
			return 0, "", false
		}
		// g→kg、ml→L
		per := price / (base.Amount / 1000)
		if kind == KindVolume {
			return per, UnitLiter, true
		}
		return per, UnitKilogram, true
	case KindCount:
		return price / e.Quantity, UnitCount, true
	}
	return 0, "", false
}

func (s *PriceSelector) fromUnified(name string, entries []CatalogEntry, limit float64) (PricingResult, bool) {
	target := NormalizeText(name)
	var best PricingResult
	found := false

	for _, e := range entries {
		if e.GenericProductName == "" {
			continue
		}
		price, unit, ok := s.unitPrice(e)
		if !ok || price > limit {
			continue
		}
		score := exactMatchScore
		if NormalizeText(e.GenericProductName) != target {
			score = s.matcher.Score(name, e.GenericProductName)
			if score < MatchThreshold {
				continue
			}
		}
		if !found || score > best.Score || (score == best.Score && price < best.Price) {
			best = PricingResult{
				IngredientName: name,
				Price:          price,
				Source:         SourceUnified,
				NormalizedUnit: unit,
				ProductName:    e.GenericProductName,
				Score:          score,
			}
			found = true
		}
	}
	if found && best.Score > 1 {
		best.Score = 1
	}
	return best, found
}

func (s *PriceSelector) fromPromotions(name string, promos []PromotionEntry, asOf time.Time, limit float64) (PricingResult, bool) {
	candidates := make([]ReferenceEntry, 0, len(promos))
	for _, p := range promos {
		if !asOf.IsZero() && !p.ValidUntil.IsZero() && p.ValidUntil.Before(startOfDay(asOf)) {
			continue
		}
		candidates = append(candidates, ReferenceEntry{ProductName: p.ProductName, Price: p.Price})
	}
	return s.bestPackagePrice(name, candidates, limit, SourcePromo)
}

func (s *PriceSelector) fromReferences(name string, refs []ReferenceEntry, limit float64) (PricingResult, bool) {
	return s.bestPackagePrice(name, refs, limit, SourceReference)
}

// bestPackagePrice 分數最高者優先，同分取最低價
func (s *PriceSelector) bestPackagePrice(name string, entries []ReferenceEntry, limit float64, source Source) (PricingResult, bool) {
	var best PricingResult
	found := false
	for _, e := range entries {
		if e.Price <= 0 || e.Price > limit {
			continue
		}
		score := s.matcher.Score(name, e.ProductName)
		if score < MatchThreshold {
			continue
		}
		if !found || score > best.Score || (score == best.Score && e.Price < best.Price) {
			best = PricingResult{
				IngredientName: name,
				Price:          e.Price,
				Source:         source,
				ProductName:    e.ProductName,
				Score:          score,
			}
			found = true
		}
	}
	return best, found
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
