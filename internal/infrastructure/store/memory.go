package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

// MemoryStore 記憶體儲存，用於開發與測試
type MemoryStore struct {
	mu           sync.RWMutex
	ingredients  []pricing.Ingredient
	recipes      []pricing.Recipe
	stores       []pricing.Store
	catalogs     map[string]CatalogSeed
	equivalences []pricing.Equivalence
	rows         map[string]pricing.RecipeStorePrice
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		catalogs: make(map[string]CatalogSeed),
		rows:     make(map[string]pricing.RecipeStorePrice),
	}
}

// Seed 載入初始資料，相同 ID 以新資料覆蓋
func (s *MemoryStore) Seed(_ context.Context, seed *Seed) error {
	if seed == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ingredients = mergeByID(s.ingredients, seed.Ingredients, func(i pricing.Ingredient) string { return i.ID })
	s.recipes = mergeByID(s.recipes, cloneRecipes(seed.Recipes), func(r pricing.Recipe) string { return r.ID })
	s.stores = mergeByID(s.stores, seed.Stores, func(st pricing.Store) string { return st.ID })
	for id, c := range seed.Catalogs {
		s.catalogs[id] = c
	}
	s.equivalences = append(s.equivalences, seed.Equivalences...)
	return nil
}

func mergeByID[T any](existing, incoming []T, id func(T) string) []T {
	index := make(map[string]int, len(existing))
	for i, v := range existing {
		index[id(v)] = i
	}
	for _, v := range incoming {
		if i, ok := index[id(v)]; ok {
			existing[i] = v
			continue
		}
		index[id(v)] = len(existing)
		existing = append(existing, v)
	}
	return existing
}

func cloneRecipes(in []pricing.Recipe) []pricing.Recipe {
	out := make([]pricing.Recipe, len(in))
	for i, r := range in {
		r.Ingredients = append([]pricing.RecipeIngredient(nil), r.Ingredients...)
		if r.EstimatedPrice != nil {
			p := *r.EstimatedPrice
			r.EstimatedPrice = &p
		}
		out[i] = r
	}
	return out
}

func (s *MemoryStore) ListRecipes(_ context.Context) ([]pricing.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecipes(s.recipes), nil
}

// GetRecipe 取得單一食譜
func (s *MemoryStore) GetRecipe(_ context.Context, id string) (*pricing.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recipes {
		if r.ID == id {
			out := cloneRecipes([]pricing.Recipe{r})[0]
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *MemoryStore) ListIngredients(_ context.Context) ([]pricing.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pricing.Ingredient(nil), s.ingredients...), nil
}

func (s *MemoryStore) ListStores(_ context.Context) ([]pricing.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pricing.Store(nil), s.stores...), nil
}

func (s *MemoryStore) StoreCatalog(_ context.Context, storeID string, asOf time.Time) (pricing.StoreCatalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.catalogs[storeID]
	catalog := pricing.StoreCatalog{
		Entries:    append([]pricing.CatalogEntry(nil), c.Entries...),
		References: append([]pricing.ReferenceEntry(nil), c.References...),
		AsOf:       asOf,
	}
	for _, p := range c.Promotions {
		if sameDayOrLater(p.ValidUntil, asOf) {
			catalog.Promotions = append(catalog.Promotions, p)
		}
	}
	return catalog, nil
}

func (s *MemoryStore) ListEquivalences(_ context.Context) ([]pricing.Equivalence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pricing.Equivalence(nil), s.equivalences...), nil
}

func (s *MemoryStore) UpsertRecipeStorePrice(_ context.Context, row pricing.RecipeStorePrice) error {
	row.Breakdown = append([]pricing.IngredientBreakdownItem(nil), row.Breakdown...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rowKey(row.RecipeID, row.StoreID, row.WeekOf)] = row
	return nil
}

func (s *MemoryStore) ListRecipeStorePrices(_ context.Context, weekOf string) ([]pricing.RecipeStorePrice, error) {
	return s.filterRows(func(r pricing.RecipeStorePrice) bool { return r.WeekOf == weekOf }), nil
}

// RecipeStorePrices 取得單一食譜某週的所有商店價格
func (s *MemoryStore) RecipeStorePrices(_ context.Context, recipeID, weekOf string) ([]pricing.RecipeStorePrice, error) {
	return s.filterRows(func(r pricing.RecipeStorePrice) bool {
		return r.RecipeID == recipeID && r.WeekOf == weekOf
	}), nil
}

func (s *MemoryStore) filterRows(keep func(pricing.RecipeStorePrice) bool) []pricing.RecipeStorePrice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pricing.RecipeStorePrice, 0)
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecipeID != out[j].RecipeID {
			return out[i].RecipeID < out[j].RecipeID
		}
		return out[i].StoreID < out[j].StoreID
	})
	return out
}

func (s *MemoryStore) UpdateRecipeEstimatedPrice(_ context.Context, recipeID string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == recipeID {
			p := price
			s.recipes[i].EstimatedPrice = &p
			return nil
		}
	}
	return common.ErrNotFound
}

// Close 無需釋放資源
func (s *MemoryStore) Close() error { return nil }

// Ping 記憶體儲存永遠可用
func (s *MemoryStore) Ping(_ context.Context) error { return nil }
