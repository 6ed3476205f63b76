package pricing

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingLoader struct {
	calls int
	items []Equivalence
	err   error
}

func (l *countingLoader) Load(context.Context) ([]Equivalence, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.items, nil
}

func TestEquivalenceCacheLazyLoad(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	loader := &countingLoader{items: []Equivalence{
		{IngredientName: "Oignon jaune", ToQuantity: 160, ToUnit: "g"},
		{IngredientName: "Chou", ToQuantity: 1.2, ToUnit: "kg"},
		{IngredientName: "Lait", ToQuantity: 250, ToUnit: "ml"},
		{IngredientName: "Citron", ToQuantity: 0, ToUnit: "g"},
	}}
	cache := NewEquivalenceCache(loader.Load, 5*time.Minute, clock.Now)
	ctx := context.Background()

	if loader.calls != 0 {
		t.Fatalf("loader called before first lookup")
	}

	tests := []struct {
		name   string
		want   float64
		wantOK bool
	}{
		{"oignon jaune", 160, true},
		{"Chou", 1200, true},
		{"lait", 0, false},
		{"citron", 0, false},
		// 雙向包含
		{"oignon jaune haché", 160, true},
		{"oignon", 160, true},
	}
	for _, tt := range tests {
		got, ok := cache.Resolve(ctx, tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestEquivalenceCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	loader := &countingLoader{items: []Equivalence{{IngredientName: "oeuf", ToQuantity: 50, ToUnit: "g"}}}
	cache := NewEquivalenceCache(loader.Load, 5*time.Minute, clock.Now)
	ctx := context.Background()

	cache.Resolve(ctx, "oeuf")
	clock.Advance(5 * time.Minute)
	cache.Resolve(ctx, "oeuf")
	if loader.calls != 1 {
		t.Fatalf("reloaded before ttl elapsed: calls = %d", loader.calls)
	}

	clock.Advance(time.Second)
	loader.items = []Equivalence{{IngredientName: "oeuf", ToQuantity: 60, ToUnit: "g"}}
	got, _ := cache.Resolve(ctx, "oeuf")
	if loader.calls != 2 || got != 60 {
		t.Errorf("after expiry: calls = %d, grams = %v; want 2, 60", loader.calls, got)
	}
}

func TestEquivalenceCacheKeepsStaleOnFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	loader := &countingLoader{items: []Equivalence{{IngredientName: "oeuf", ToQuantity: 50, ToUnit: "g"}}}
	cache := NewEquivalenceCache(loader.Load, time.Minute, clock.Now)
	ctx := context.Background()

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	loader.err = errors.New("source unavailable")
	clock.Advance(2 * time.Minute)

	got, ok := cache.Resolve(ctx, "oeuf")
	if !ok || got != 50 {
		t.Errorf("Resolve after failed refresh = %v, %v; want 50, true", got, ok)
	}
	if err := cache.Refresh(ctx); err == nil {
		t.Error("Refresh() should return loader error")
	}

	// 失敗不更新載入時間，下次查詢仍會重試
	calls := loader.calls
	cache.Resolve(ctx, "oeuf")
	if loader.calls != calls+1 {
		t.Errorf("expected retry after failure, calls = %d", loader.calls)
	}
}

func TestEquivalenceCacheEmptyLoadHonorsTTL(t *testing.T) {
	tests := []struct {
		name  string
		items []Equivalence
	}{
		{"no rows", nil},
		{"only non-gram rows", []Equivalence{{IngredientName: "oignon", ToQuantity: 1, ToUnit: "tasse"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
			loader := &countingLoader{items: tt.items}
			cache := NewEquivalenceCache(loader.Load, 5*time.Minute, clock.Now)
			ctx := context.Background()

			for i := 0; i < 50; i++ {
				if _, ok := cache.Resolve(ctx, "oignon"); ok {
					t.Fatal("Resolve() should miss on an empty mapping")
				}
			}
			if loader.calls != 1 {
				t.Errorf("loader calls within one ttl window = %d, want 1", loader.calls)
			}

			clock.Advance(5*time.Minute + time.Second)
			cache.Resolve(ctx, "oignon")
			if loader.calls != 2 {
				t.Errorf("loader calls after ttl = %d, want 2", loader.calls)
			}
		})
	}
}

func TestEquivalenceCacheNilLoader(t *testing.T) {
	cache := NewEquivalenceCache(nil, 0, nil)
	if _, ok := cache.Resolve(context.Background(), "oeuf"); ok {
		t.Error("Resolve with nil loader should miss")
	}
}
