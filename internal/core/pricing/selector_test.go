package pricing

import (
	"testing"
	"time"
)

func TestSelectUnified(t *testing.T) {
	s := NewPriceSelector(nil, nil, nil, 0)

	tests := []struct {
		name       string
		ingredient string
		entries    []CatalogEntry
		wantPrice  float64
		wantUnit   string
		wantSource Source
		wantProd   string
	}{
		{
			name:       "price per kg from package",
			ingredient: "ground beef",
			entries:    []CatalogEntry{{GenericProductName: "ground beef", RegularPrice: 4.54, Quantity: 1, Unit: "lb"}},
			wantPrice:  10,
			wantUnit:   UnitKilogram,
			wantSource: SourceUnified,
			wantProd:   "ground beef",
		},
		{
			name:       "sale price preferred",
			ingredient: "carottes",
			entries:    []CatalogEntry{{GenericProductName: "carottes", RegularPrice: 3, SalePrice: 2, Quantity: 2, Unit: "kg"}},
			wantPrice:  1,
			wantUnit:   UnitKilogram,
			wantSource: SourceUnified,
			wantProd:   "carottes",
		},
		{
			name:       "explicit unit price per liter",
			ingredient: "lait",
			entries:    []CatalogEntry{{GenericProductName: "lait 2%", RegularPrice: 6.49, UnitPrice: 1.62, Quantity: 4, Unit: "L"}},
			wantPrice:  1.62,
			wantUnit:   UnitLiter,
			wantSource: SourceUnified,
			wantProd:   "lait 2%",
		},
		{
			name:       "count entry gives per item price",
			ingredient: "citron",
			entries:    []CatalogEntry{{GenericProductName: "citron", RegularPrice: 3, Quantity: 4, Unit: "unité"}},
			wantPrice:  0.75,
			wantUnit:   UnitCount,
			wantSource: SourceUnified,
			wantProd:   "citron",
		},
		{
			name:       "exact name wins over cheaper partial match",
			ingredient: "beurre",
			entries: []CatalogEntry{
				{GenericProductName: "beurre d'arachide", RegularPrice: 3, Quantity: 1, Unit: "kg"},
				{GenericProductName: "Beurre", RegularPrice: 12, Quantity: 1, Unit: "kg"},
			},
			wantPrice:  12,
			wantUnit:   UnitKilogram,
			wantSource: SourceUnified,
			wantProd:   "Beurre",
		},
		{
			name:       "tie broken by lowest price",
			ingredient: "riz",
			entries: []CatalogEntry{
				{GenericProductName: "riz basmati", RegularPrice: 8, Quantity: 2, Unit: "kg"},
				{GenericProductName: "riz jasmin", RegularPrice: 6, Quantity: 2, Unit: "kg"},
			},
			wantPrice:  3,
			wantUnit:   UnitKilogram,
			wantSource: SourceUnified,
			wantProd:   "riz jasmin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Select(tt.ingredient, "", StoreCatalog{Entries: tt.entries})
			if got.Source != tt.wantSource || got.NormalizedUnit != tt.wantUnit || got.ProductName != tt.wantProd {
				t.Fatalf("Select() = %+v", got)
			}
			if !almostEqual(roundTo(got.Price, 6), tt.wantPrice) {
				t.Errorf("price = %v, want %v", got.Price, tt.wantPrice)
			}
		})
	}
}

func TestSelectCapRejectsMismatch(t *testing.T) {
	s := NewPriceSelector(nil, nil, nil, 0)

	catalog := StoreCatalog{
		// 100 g 的高級鹽被視為錯配：$/kg 超過上限
		Entries:    []CatalogEntry{{GenericProductName: "sel", RegularPrice: 5, Quantity: 100, Unit: "g"}},
		References: []ReferenceEntry{{ProductName: "Sel de table", Price: 1.99}},
	}
	got := s.Select("sel", "", catalog)
	if got.Source != SourceReference || got.Price != 1.99 {
		t.Errorf("Select() = %+v, want reference 1.99", got)
	}

	// 無對應上限時使用預設上限 50
	got = s.Select("truffe", "", StoreCatalog{Entries: []CatalogEntry{{GenericProductName: "truffe", RegularPrice: 80, Quantity: 1, Unit: "kg"}}})
	if got.Source != SourceEstimate {
		t.Errorf("Select() over default cap = %+v, want estimate", got)
	}
}

func TestSelectPromotions(t *testing.T) {
	s := NewPriceSelector(nil, nil, nil, 0)
	asOf := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

	catalog := StoreCatalog{
		AsOf: asOf,
		Promotions: []PromotionEntry{
			{ProductName: "Poulet entier", Price: 9.99, ValidUntil: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
			{ProductName: "Poulet entier frais", Price: 12.99, ValidUntil: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
			{ProductName: "Poulet entier de grain", Price: 11.49, ValidUntil: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
			{ProductName: "Poulet rôti", Price: 49.99, ValidUntil: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
		References: []ReferenceEntry{{ProductName: "Poulet", Price: 1}},
	}

	got := s.Select("poulet", "viande", catalog)
	if got.Source != SourcePromo || got.Price != 11.49 || got.ProductName != "Poulet entier de grain" {
		t.Errorf("Select() = %+v, want promo 11.49", got)
	}
}

func TestSelectEstimate(t *testing.T) {
	tables := DefaultTables()
	tables.PriceCaps = append(tables.PriceCaps, PriceCap{Keyword: "bouillon", MaxPrice: 2})
	s := NewPriceSelector(tables, nil, nil, 0)

	tests := []struct {
		ingredient, category string
		want                 float64
	}{
		{"bavette", "Viande", 8.99},
		{"yogourt", "produits laitiers", 4.99},
		{"quinoa", "", 3.99},
		{"bouillon de poulet", "epicerie", 2},
	}

	for _, tt := range tests {
		got := s.Select(tt.ingredient, tt.category, StoreCatalog{})
		if got.Source != SourceEstimate || got.Price != tt.want || !got.IsEstimate() {
			t.Errorf("Select(%q, %q) = %+v, want estimate %v", tt.ingredient, tt.category, got, tt.want)
		}
	}
}

func TestSelectIgnoresNonFood(t *testing.T) {
	s := NewPriceSelector(nil, nil, nil, 0)
	catalog := StoreCatalog{
		References: []ReferenceEntry{{ProductName: "Savon au lait d'avoine", Price: 2.49}},
	}
	if got := s.Select("lait", "", catalog); got.Source != SourceEstimate {
		t.Errorf("Select() = %+v, want estimate", got)
	}
}
