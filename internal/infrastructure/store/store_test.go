package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

type repository interface {
	Seed(ctx context.Context, seed *Seed) error
	ListRecipes(ctx context.Context) ([]pricing.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*pricing.Recipe, error)
	ListIngredients(ctx context.Context) ([]pricing.Ingredient, error)
	ListStores(ctx context.Context) ([]pricing.Store, error)
	StoreCatalog(ctx context.Context, storeID string, asOf time.Time) (pricing.StoreCatalog, error)
	ListEquivalences(ctx context.Context) ([]pricing.Equivalence, error)
	UpsertRecipeStorePrice(ctx context.Context, row pricing.RecipeStorePrice) error
	ListRecipeStorePrices(ctx context.Context, weekOf string) ([]pricing.RecipeStorePrice, error)
	RecipeStorePrices(ctx context.Context, recipeID, weekOf string) ([]pricing.RecipeStorePrice, error)
	UpdateRecipeEstimatedPrice(ctx context.Context, recipeID string, price float64) error
	Close() error
}

var (
	_ repository = (*MemoryStore)(nil)
	_ repository = (*SQLStore)(nil)
)

func testSeed() *Seed {
	return &Seed{
		Ingredients: []pricing.Ingredient{
			{ID: "beef", Name: "ground beef", Category: "meat"},
			{ID: "corn", Name: "creamed corn"},
		},
		Recipes: []pricing.Recipe{
			{ID: "pie", Name: "Pâté chinois", Ingredients: []pricing.RecipeIngredient{
				{IngredientID: "beef", Quantity: 1, Unit: "lb"},
				{IngredientID: "corn", Quantity: 398, Unit: "ml"},
			}},
		},
		Stores: []pricing.Store{{ID: "s1", Name: "Maxi"}, {ID: "s2", Name: "IGA"}},
		Catalogs: map[string]CatalogSeed{
			"s1": {
				Entries: []pricing.CatalogEntry{{GenericProductName: "ground beef", RegularPrice: 4.44, Quantity: 1, Unit: "lb"}},
				Promotions: []pricing.PromotionEntry{
					{ProductName: "Maïs en crème", Price: 0.99, ValidUntil: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
					{ProductName: "Poulet", Price: 5.99, ValidUntil: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
				},
				References: []pricing.ReferenceEntry{{ProductName: "Sel", Price: 1.99}},
			},
		},
		Equivalences: []pricing.Equivalence{{IngredientName: "oeuf", ToQuantity: 50, ToUnit: "g"}},
	}
}

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricer.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stores(t *testing.T) map[string]repository {
	t.Helper()
	return map[string]repository{
		"memory": NewMemoryStore(),
		"sqlite": openSQLite(t),
	}
}

func TestSeedAndRead(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.Seed(ctx, testSeed()); err != nil {
				t.Fatalf("Seed() error = %v", err)
			}

			recipes, err := repo.ListRecipes(ctx)
			if err != nil {
				t.Fatalf("ListRecipes() error = %v", err)
			}
			if len(recipes) != 1 || len(recipes[0].Ingredients) != 2 || recipes[0].Ingredients[1].Unit != "ml" {
				t.Fatalf("ListRecipes() = %+v", recipes)
			}
			if recipes[0].EstimatedPrice != nil {
				t.Errorf("EstimatedPrice = %v, want nil", *recipes[0].EstimatedPrice)
			}

			ings, _ := repo.ListIngredients(ctx)
			if len(ings) != 2 {
				t.Errorf("ListIngredients() len = %d, want 2", len(ings))
			}
			sts, _ := repo.ListStores(ctx)
			if len(sts) != 2 {
				t.Errorf("ListStores() len = %d, want 2", len(sts))
			}
			eqs, _ := repo.ListEquivalences(ctx)
			if len(eqs) != 1 || eqs[0].ToQuantity != 50 {
				t.Errorf("ListEquivalences() = %+v", eqs)
			}
		})
	}
}

func TestStoreCatalogFiltersExpiredPromotions(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC)

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.Seed(ctx, testSeed()); err != nil {
				t.Fatalf("Seed() error = %v", err)
			}
			catalog, err := repo.StoreCatalog(ctx, "s1", asOf)
			if err != nil {
				t.Fatalf("StoreCatalog() error = %v", err)
			}
			if len(catalog.Entries) != 1 || catalog.Entries[0].RegularPrice != 4.44 {
				t.Errorf("Entries = %+v", catalog.Entries)
			}
			if len(catalog.Promotions) != 1 || catalog.Promotions[0].ProductName != "Maïs en crème" {
				t.Errorf("Promotions = %+v", catalog.Promotions)
			}
			if len(catalog.References) != 1 {
				t.Errorf("References = %+v", catalog.References)
			}
			if !catalog.AsOf.Equal(asOf) {
				t.Errorf("AsOf = %v, want %v", catalog.AsOf, asOf)
			}

			empty, err := repo.StoreCatalog(ctx, "s2", asOf)
			if err != nil || len(empty.Entries)+len(empty.Promotions)+len(empty.References) != 0 {
				t.Errorf("StoreCatalog(s2) = %+v, %v", empty, err)
			}
		})
	}
}

func TestUpsertRecipeStorePriceOverwrites(t *testing.T) {
	ctx := context.Background()
	calculated := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			row := pricing.RecipeStorePrice{
				RecipeID: "pie", StoreID: "s1", WeekOf: "2024-03-04",
				TotalCost: 8.5, MissingIngredientsCount: 1, IsComplete: false,
				Breakdown: []pricing.IngredientBreakdownItem{
					{IngredientID: "beef", Name: "ground beef", Quantity: 1, Unit: "lb", UnitPrice: 9.78, PriceUnit: "kg", CalculatedCost: 4.44, Source: pricing.SourceUnified},
				},
				CalculatedAt: calculated,
			}
			if err := repo.UpsertRecipeStorePrice(ctx, row); err != nil {
				t.Fatalf("UpsertRecipeStorePrice() error = %v", err)
			}
			row.TotalCost = 5.43
			row.MissingIngredientsCount = 0
			row.IsComplete = true
			if err := repo.UpsertRecipeStorePrice(ctx, row); err != nil {
				t.Fatalf("second UpsertRecipeStorePrice() error = %v", err)
			}
			other := row
			other.WeekOf = "2024-02-26"
			if err := repo.UpsertRecipeStorePrice(ctx, other); err != nil {
				t.Fatal(err)
			}

			rows, err := repo.ListRecipeStorePrices(ctx, "2024-03-04")
			if err != nil {
				t.Fatalf("ListRecipeStorePrices() error = %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("rows = %d, want 1", len(rows))
			}
			got := rows[0]
			if got.TotalCost != 5.43 || !got.IsComplete || got.MissingIngredientsCount != 0 {
				t.Errorf("row = %+v", got)
			}
			if len(got.Breakdown) != 1 || got.Breakdown[0].Source != pricing.SourceUnified {
				t.Errorf("breakdown = %+v", got.Breakdown)
			}
			if !got.CalculatedAt.Equal(calculated) {
				t.Errorf("CalculatedAt = %v, want %v", got.CalculatedAt, calculated)
			}

			perRecipe, _ := repo.RecipeStorePrices(ctx, "pie", "2024-02-26")
			if len(perRecipe) != 1 {
				t.Errorf("RecipeStorePrices() len = %d, want 1", len(perRecipe))
			}
		})
	}
}

func TestUpdateRecipeEstimatedPrice(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.Seed(ctx, testSeed()); err != nil {
				t.Fatal(err)
			}
			if err := repo.UpdateRecipeEstimatedPrice(ctx, "pie", 6.75); err != nil {
				t.Fatalf("UpdateRecipeEstimatedPrice() error = %v", err)
			}
			r, err := repo.GetRecipe(ctx, "pie")
			if err != nil || r.EstimatedPrice == nil || *r.EstimatedPrice != 6.75 {
				t.Errorf("GetRecipe() = %+v, %v", r, err)
			}

			err = repo.UpdateRecipeEstimatedPrice(ctx, "missing", 1)
			if !errors.Is(err, common.ErrNotFound) && common.AsCustomError(err).Code != common.ErrCodeNotFound {
				t.Errorf("update missing recipe error = %v, want not found", err)
			}
			if _, err := repo.GetRecipe(ctx, "missing"); common.AsCustomError(err).Code != common.ErrCodeNotFound {
				t.Errorf("GetRecipe(missing) error = %v", err)
			}
		})
	}
}

func TestStoreCatalogOpenEndedPromotion(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2024, 3, 6, 9, 30, 0, 0, time.UTC)

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			seed := testSeed()
			c := seed.Catalogs["s1"]
			c.Promotions = append(c.Promotions, pricing.PromotionEntry{ProductName: "Farine", Price: 2.49})
			seed.Catalogs["s1"] = c
			if err := repo.Seed(ctx, seed); err != nil {
				t.Fatalf("Seed() error = %v", err)
			}

			catalog, err := repo.StoreCatalog(ctx, "s1", asOf)
			if err != nil {
				t.Fatalf("StoreCatalog() error = %v", err)
			}
			var found bool
			for _, p := range catalog.Promotions {
				if p.ProductName == "Farine" {
					found = true
					if !p.ValidUntil.IsZero() {
						t.Errorf("ValidUntil = %v, want zero", p.ValidUntil)
					}
				}
			}
			if !found || len(catalog.Promotions) != 2 {
				t.Errorf("Promotions = %+v, want the open-ended promotion kept", catalog.Promotions)
			}
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	content := `{
		"ingredients": [{"id": "beef", "name": "ground beef"}],
		"stores": [{"id": "s1", "name": "Maxi"}],
		"catalogs": {"s1": {"promotions": [{"product_name": "Boeuf", "price": 4.99, "valid_until": "2024-03-10T00:00:00Z"}]}}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if len(seed.Ingredients) != 1 || len(seed.Catalogs["s1"].Promotions) != 1 {
		t.Errorf("seed = %+v", seed)
	}

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadSeedFile() should fail for a missing file")
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", ""); err == nil {
		t.Error("Open() should reject unsupported drivers")
	}
}

func TestRebind(t *testing.T) {
	s := &SQLStore{postgres: true}
	got := s.rebind(`SELECT * FROM t WHERE a = ? AND b = ?`)
	if got != `SELECT * FROM t WHERE a = $1 AND b = $2` {
		t.Errorf("rebind() = %q", got)
	}
	s.postgres = false
	if got := s.rebind(`a = ?`); got != `a = ?` {
		t.Errorf("sqlite rebind() = %q", got)
	}
}
