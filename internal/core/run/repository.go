package run

import (
	"context"
	"time"

	"grocery-pricer/internal/core/pricing"
)

// Repository 計算流程所需的資料存取介面
type Repository interface {
	// ListRecipes 回傳所有食譜（含未彙總的食材行）
	ListRecipes(ctx context.Context) ([]pricing.Recipe, error)
	ListIngredients(ctx context.Context) ([]pricing.Ingredient, error)
	ListStores(ctx context.Context) ([]pricing.Store, error)
	// StoreCatalog 回傳商店的統一目錄、asOf 當日仍有效的促銷與參考價
	StoreCatalog(ctx context.Context, storeID string, asOf time.Time) (pricing.StoreCatalog, error)
	UpsertRecipeStorePrice(ctx context.Context, row pricing.RecipeStorePrice) error
	ListRecipeStorePrices(ctx context.Context, weekOf string) ([]pricing.RecipeStorePrice, error)
	UpdateRecipeEstimatedPrice(ctx context.Context, recipeID string, price float64) error
}
