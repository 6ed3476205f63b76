package pricing

import (
	"context"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestToBase(t *testing.T) {
	c := NewUnitConverter(nil, nil)

	tests := []struct {
		name     string
		qty      float64
		unit     string
		want     float64
		wantUnit string
		wantOK   bool
	}{
		{"pound", 1, "lb", 454, UnitGram, true},
		{"grams", 454, "g", 454, UnitGram, true},
		{"kilo", 1.5, "kg", 1500, UnitGram, true},
		{"liter", 1, "L", 1000, UnitMilliliter, true},
		{"milliliter", 1000, "ml", 1000, UnitMilliliter, true},
		{"tablespoon with accents", 2, "c. à soupe", 30, UnitMilliliter, true},
		{"cup", 1, "tasse", 250, UnitMilliliter, true},
		{"pinch", 1, "pincée", 0.5, UnitGram, true},
		{"clove", 2, "gousses", 0, "", false},
		{"free text", 1, "au goût", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ToBase(tt.qty, tt.unit)
			if ok != tt.wantOK {
				t.Fatalf("ToBase(%v, %q) ok = %v, want %v", tt.qty, tt.unit, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !almostEqual(got.Amount, tt.want) || got.Unit != tt.wantUnit {
				t.Errorf("ToBase(%v, %q) = %+v, want %v %s", tt.qty, tt.unit, got, tt.want, tt.wantUnit)
			}
		})
	}
}

func TestPoundEqualsGrams(t *testing.T) {
	c := NewUnitConverter(nil, nil)
	lb, _ := c.ToBase(1, "lb")
	g, _ := c.ToBase(454, "g")
	if lb != g {
		t.Errorf("1 lb = %+v, 454 g = %+v", lb, g)
	}
	l, _ := c.ToBase(1, "l")
	ml, _ := c.ToBase(1000, "ml")
	if l != ml {
		t.Errorf("1 L = %+v, 1000 ml = %+v", l, ml)
	}
}

func TestConvertTo(t *testing.T) {
	c := NewUnitConverter(nil, nil)

	tests := []struct {
		qty      float64
		from, to string
		want     float64
		wantOK   bool
	}{
		{1, "lb", "kg", 0.454, true},
		{500, "g", "kg", 0.5, true},
		{398, "ml", "l", 0.398, true},
		// 密度 1 近似
		{250, "ml", "kg", 0.25, true},
		{2, "kg", "l", 2, true},
		{3, "gousses", "kg", 0, false},
		{1, "kg", "unit", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.ConvertTo(tt.qty, tt.from, tt.to)
		if ok != tt.wantOK || !almostEqual(got, tt.want) {
			t.Errorf("ConvertTo(%v, %q, %q) = %v, %v; want %v, %v", tt.qty, tt.from, tt.to, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToCanonical(t *testing.T) {
	c := NewUnitConverter(nil, nil)
	if got := c.ToCanonical(2, "lbs"); got.Unit != UnitGram || !almostEqual(got.Amount, 908) {
		t.Errorf("ToCanonical(2 lbs) = %+v", got)
	}
	if got := c.ToCanonical(3, "gousses"); got.Unit != UnitCount || got.Amount != 3 {
		t.Errorf("ToCanonical(3 gousses) = %+v", got)
	}
}

func TestIsCountBased(t *testing.T) {
	c := NewUnitConverter(nil, nil)

	tests := []struct {
		name, unit string
		want       bool
	}{
		{"oignons", "", true},
		{"oignons", "g", false},
		{"ail", "gousses", true},
		{"persil", "branches", true},
		{"farine", "tasse", false},
		{"oeufs", "au goût", true},
		{"sel", "au goût", false},
		{"boeuf haché", "lb", false},
	}

	for _, tt := range tests {
		if got := c.IsCountBased(tt.name, tt.unit); got != tt.want {
			t.Errorf("IsCountBased(%q, %q) = %v, want %v", tt.name, tt.unit, got, tt.want)
		}
	}
}

func TestGramsPerUnit(t *testing.T) {
	ctx := context.Background()
	c := NewUnitConverter(nil, nil)

	tests := []struct {
		name   string
		want   float64
		wantOK bool
	}{
		{"Oeufs", 50, true},
		{"gousses d'ail", 5, true},
		{"pommes de terre", 200, true},
		{"patate douce", 250, true},
		{"persil frais", 15, true},
		{"truffe noire", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.GramsPerUnit(ctx, tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("GramsPerUnit(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGramsPerUnitPrefersEquivalences(t *testing.T) {
	eq := NewEquivalenceCache(func(context.Context) ([]Equivalence, error) {
		return []Equivalence{{IngredientName: "oeuf", ToQuantity: 56, ToUnit: "g"}}, nil
	}, 0, nil)
	c := NewUnitConverter(nil, eq)

	got, ok := c.GramsPerUnit(context.Background(), "oeuf")
	if !ok || got != 56 {
		t.Errorf("GramsPerUnit(oeuf) = %v, %v; want 56, true", got, ok)
	}
	if got := c.CountToGrams(context.Background(), 3, "oeuf"); got != 168 {
		t.Errorf("CountToGrams(3 oeuf) = %v, want 168", got)
	}
}

func TestCountToGramsDefault(t *testing.T) {
	c := NewUnitConverter(nil, nil)
	if got := c.CountToGrams(context.Background(), 2, "ingrédient inconnu"); got != 2*DefaultGramsPerUnit {
		t.Errorf("CountToGrams() = %v, want %v", got, 2*DefaultGramsPerUnit)
	}
}

func TestPackageSize(t *testing.T) {
	c := NewUnitConverter(nil, nil)

	tests := []struct {
		name string
		kind UnitKind
		want Quantity
	}{
		{"huile végétale", KindVolume, Quantity{750, UnitMilliliter}},
		{"huile d'olive", KindVolume, Quantity{1000, UnitMilliliter}},
		{"farine tout usage", KindMass, Quantity{2500, UnitGram}},
		{"beurre", KindMass, Quantity{454, UnitGram}},
		{"poitrine de poulet", KindMass, Quantity{1000, UnitGram}},
		{"filet de saumon", KindMass, Quantity{500, UnitGram}},
		{"fromage cheddar", KindMass, Quantity{400, UnitGram}},
		{"quinoa", KindMass, Quantity{500, UnitGram}},
		{"jus de pomme", KindVolume, Quantity{500, UnitMilliliter}},
	}

	for _, tt := range tests {
		if got := c.PackageSize(tt.name, tt.kind); got != tt.want {
			t.Errorf("PackageSize(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}
