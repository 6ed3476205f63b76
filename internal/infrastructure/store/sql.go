package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

// 支援的資料庫
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const dateLayout = "2006-01-02"

// SQLStore 以 database/sql 實作的儲存
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// Open 開啟資料庫並建立資料表
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		name     string
		postgres bool
	)
	switch driver {
	case DriverSQLite, "":
		name = "sqlite"
		if dsn == "" {
			dsn = "grocery-pricer.db"
		}
	case DriverPostgres, "pgx":
		name = "pgx"
		postgres = true
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if !postgres {
		// SQLite 只允許單一寫入者
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", name, err)
	}

	s := &SQLStore{db: db, postgres: postgres}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	common.LogInfo("資料庫已連線", zap.String("driver", name))
	return s, nil
}

// Close 關閉連線
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping 檢查連線
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind 將 ? 佔位符轉為 PostgreSQL 的 $n
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	_, err := tx.ExecContext(ctx, s.rebind(query), args...)
	return err
}

// Seed 寫入初始資料，相同主鍵者覆蓋
func (s *SQLStore) Seed(ctx context.Context, seed *Seed) (retErr error) {
	if seed == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, ing := range seed.Ingredients {
		if err := s.exec(ctx, tx, `INSERT INTO ingredients (id, name, category) VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, category = excluded.category`,
			ing.ID, ing.Name, ing.Category); err != nil {
			return fmt.Errorf("seed ingredient %s: %w", ing.ID, err)
		}
	}
	for _, r := range seed.Recipes {
		if err := s.exec(ctx, tx, `INSERT INTO recipes (id, name, estimated_price) VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
			r.ID, r.Name, nullFloat(r.EstimatedPrice)); err != nil {
			return fmt.Errorf("seed recipe %s: %w", r.ID, err)
		}
		if err := s.exec(ctx, tx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, r.ID); err != nil {
			return fmt.Errorf("seed recipe %s: %w", r.ID, err)
		}
		for i, line := range r.Ingredients {
			if err := s.exec(ctx, tx, `INSERT INTO recipe_ingredients (recipe_id, line_no, ingredient_id, quantity, unit)
				VALUES (?, ?, ?, ?, ?)`, r.ID, i, line.IngredientID, line.Quantity, line.Unit); err != nil {
				return fmt.Errorf("seed recipe %s line %d: %w", r.ID, i, err)
			}
		}
	}
	for _, st := range seed.Stores {
		if err := s.exec(ctx, tx, `INSERT INTO stores (id, name) VALUES (?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`, st.ID, st.Name); err != nil {
			return fmt.Errorf("seed store %s: %w", st.ID, err)
		}
	}
	for storeID, c := range seed.Catalogs {
		if err := s.seedCatalog(ctx, tx, storeID, c); err != nil {
			return err
		}
	}
	for _, eq := range seed.Equivalences {
		if err := s.exec(ctx, tx, `INSERT INTO ingredient_equivalences (ingredient_name, to_quantity, to_unit) VALUES (?, ?, ?)
			ON CONFLICT (ingredient_name) DO UPDATE SET to_quantity = excluded.to_quantity, to_unit = excluded.to_unit`,
			eq.IngredientName, eq.ToQuantity, eq.ToUnit); err != nil {
			return fmt.Errorf("seed equivalence %s: %w", eq.IngredientName, err)
		}
	}
	return tx.Commit()
}

// seedCatalog 以新資料取代商店的價格資料
func (s *SQLStore) seedCatalog(ctx context.Context, tx *sql.Tx, storeID string, c CatalogSeed) error {
	for _, table := range []string{"unified_prices", "promotions", "reference_prices"} {
		if err := s.exec(ctx, tx, `DELETE FROM `+table+` WHERE store_id = ?`, storeID); err != nil {
			return fmt.Errorf("clear %s for store %s: %w", table, storeID, err)
		}
	}
	for _, e := range c.Entries {
		if err := s.exec(ctx, tx, `INSERT INTO unified_prices
			(store_id, generic_product_name, regular_price, sale_price, unit_price, quantity, unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			storeID, e.GenericProductName, e.RegularPrice, e.SalePrice, e.UnitPrice, e.Quantity, e.Unit); err != nil {
			return fmt.Errorf("seed unified price for store %s: %w", storeID, err)
		}
	}
	for _, p := range c.Promotions {
		// 沒有截止日的促銷存為 NULL，視為一直有效
		var until sql.NullString
		if !p.ValidUntil.IsZero() {
			until = sql.NullString{String: p.ValidUntil.Format(dateLayout), Valid: true}
		}
		if err := s.exec(ctx, tx, `INSERT INTO promotions (store_id, product_name, price, valid_until) VALUES (?, ?, ?, ?)`,
			storeID, p.ProductName, p.Price, until); err != nil {
			return fmt.Errorf("seed promotion for store %s: %w", storeID, err)
		}
	}
	for _, r := range c.References {
		if err := s.exec(ctx, tx, `INSERT INTO reference_prices (store_id, product_name, price) VALUES (?, ?, ?)`,
			storeID, r.ProductName, r.Price); err != nil {
			return fmt.Errorf("seed reference price for store %s: %w", storeID, err)
		}
	}
	return nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func (s *SQLStore) ListRecipes(ctx context.Context) ([]pricing.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, estimated_price FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []pricing.Recipe
	index := make(map[string]int)
	for rows.Next() {
		var (
			r     pricing.Recipe
			price sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Name, &price); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		if price.Valid {
			p := price.Float64
			r.EstimatedPrice = &p
		}
		index[r.ID] = len(recipes)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	lines, err := s.db.QueryContext(ctx, `SELECT recipe_id, ingredient_id, quantity, unit
		FROM recipe_ingredients ORDER BY recipe_id, line_no`)
	if err != nil {
		return nil, fmt.Errorf("select recipe ingredients: %w", err)
	}
	defer func() { _ = lines.Close() }()

	for lines.Next() {
		var (
			recipeID string
			line     pricing.RecipeIngredient
		)
		if err := lines.Scan(&recipeID, &line.IngredientID, &line.Quantity, &line.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		if i, ok := index[recipeID]; ok {
			recipes[i].Ingredients = append(recipes[i].Ingredients, line)
		}
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return recipes, nil
}

// GetRecipe 取得單一食譜（不含食材行）
func (s *SQLStore) GetRecipe(ctx context.Context, id string) (*pricing.Recipe, error) {
	var (
		r     pricing.Recipe
		price sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, name, estimated_price FROM recipes WHERE id = ?`), id).
		Scan(&r.ID, &r.Name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound.WithErr(fmt.Errorf("recipe %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("select recipe %s: %w", id, err)
	}
	if price.Valid {
		p := price.Float64
		r.EstimatedPrice = &p
	}
	return &r, nil
}

func (s *SQLStore) ListIngredients(ctx context.Context) ([]pricing.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select ingredients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []pricing.Ingredient
	for rows.Next() {
		var ing pricing.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListStores(ctx context.Context) ([]pricing.Store, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM stores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select stores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []pricing.Store
	for rows.Next() {
		var st pricing.Store
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) StoreCatalog(ctx context.Context, storeID string, asOf time.Time) (pricing.StoreCatalog, error) {
	catalog := pricing.StoreCatalog{AsOf: asOf}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT generic_product_name, regular_price, sale_price, unit_price, quantity, unit
		FROM unified_prices WHERE store_id = ?`), storeID)
	if err != nil {
		return catalog, fmt.Errorf("select unified prices: %w", err)
	}
	for rows.Next() {
		var e pricing.CatalogEntry
		if err := rows.Scan(&e.GenericProductName, &e.RegularPrice, &e.SalePrice, &e.UnitPrice, &e.Quantity, &e.Unit); err != nil {
			_ = rows.Close()
			return catalog, fmt.Errorf("scan unified price: %w", err)
		}
		catalog.Entries = append(catalog.Entries, e)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return catalog, fmt.Errorf("iterate unified prices: %w", err)
	}

	// ISO 日期字串可直接比較
	rows, err = s.db.QueryContext(ctx, s.rebind(`SELECT product_name, price, valid_until
		FROM promotions WHERE store_id = ? AND (valid_until IS NULL OR valid_until >= ?)`), storeID, asOf.Format(dateLayout))
	if err != nil {
		return catalog, fmt.Errorf("select promotions: %w", err)
	}
	for rows.Next() {
		var (
			p     pricing.PromotionEntry
			until sql.NullString
		)
		if err := rows.Scan(&p.ProductName, &p.Price, &until); err != nil {
			_ = rows.Close()
			return catalog, fmt.Errorf("scan promotion: %w", err)
		}
		if until.Valid {
			if p.ValidUntil, err = time.ParseInLocation(dateLayout, until.String, asOf.Location()); err != nil {
				_ = rows.Close()
				return catalog, fmt.Errorf("parse promotion valid_until %q: %w", until.String, err)
			}
		}
		catalog.Promotions = append(catalog.Promotions, p)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return catalog, fmt.Errorf("iterate promotions: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, s.rebind(`SELECT product_name, price FROM reference_prices WHERE store_id = ?`), storeID)
	if err != nil {
		return catalog, fmt.Errorf("select reference prices: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r pricing.ReferenceEntry
		if err := rows.Scan(&r.ProductName, &r.Price); err != nil {
			return catalog, fmt.Errorf("scan reference price: %w", err)
		}
		catalog.References = append(catalog.References, r)
	}
	return catalog, rows.Err()
}

func (s *SQLStore) ListEquivalences(ctx context.Context) ([]pricing.Equivalence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ingredient_name, to_quantity, to_unit FROM ingredient_equivalences`)
	if err != nil {
		return nil, fmt.Errorf("select equivalences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []pricing.Equivalence
	for rows.Next() {
		var eq pricing.Equivalence
		if err := rows.Scan(&eq.IngredientName, &eq.ToQuantity, &eq.ToUnit); err != nil {
			return nil, fmt.Errorf("scan equivalence: %w", err)
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertRecipeStorePrice(ctx context.Context, row pricing.RecipeStorePrice) error {
	breakdown, err := json.Marshal(row.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	complete := 0
	if row.IsComplete {
		complete = 1
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO recipe_store_prices
		(recipe_id, store_id, week_of, total_cost, missing_ingredients_count, is_complete, breakdown, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (recipe_id, store_id, week_of) DO UPDATE SET
			total_cost = excluded.total_cost,
			missing_ingredients_count = excluded.missing_ingredients_count,
			is_complete = excluded.is_complete,
			breakdown = excluded.breakdown,
			calculated_at = excluded.calculated_at`),
		row.RecipeID, row.StoreID, row.WeekOf, row.TotalCost, row.MissingIngredientsCount,
		complete, string(breakdown), row.CalculatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert recipe store price: %w", err)
	}
	return nil
}

func (s *SQLStore) ListRecipeStorePrices(ctx context.Context, weekOf string) ([]pricing.RecipeStorePrice, error) {
	return s.queryRows(ctx, `WHERE week_of = ?`, weekOf)
}

// RecipeStorePrices 取得單一食譜某週的所有商店價格
func (s *SQLStore) RecipeStorePrices(ctx context.Context, recipeID, weekOf string) ([]pricing.RecipeStorePrice, error) {
	return s.queryRows(ctx, `WHERE recipe_id = ? AND week_of = ?`, recipeID, weekOf)
}

func (s *SQLStore) queryRows(ctx context.Context, where string, args ...any) ([]pricing.RecipeStorePrice, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT recipe_id, store_id, week_of, total_cost,
		missing_ingredients_count, is_complete, breakdown, calculated_at
		FROM recipe_store_prices `+where+` ORDER BY recipe_id, store_id`), args...)
	if err != nil {
		return nil, fmt.Errorf("select recipe store prices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]pricing.RecipeStorePrice, 0)
	for rows.Next() {
		var (
			r          pricing.RecipeStorePrice
			complete   int
			breakdown  string
			calculated string
		)
		if err := rows.Scan(&r.RecipeID, &r.StoreID, &r.WeekOf, &r.TotalCost,
			&r.MissingIngredientsCount, &complete, &breakdown, &calculated); err != nil {
			return nil, fmt.Errorf("scan recipe store price: %w", err)
		}
		r.IsComplete = complete != 0
		if err := common.ParseJSON(breakdown, &r.Breakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown for %s/%s: %w", r.RecipeID, r.StoreID, err)
		}
		if r.CalculatedAt, err = time.Parse(time.RFC3339Nano, calculated); err != nil {
			return nil, fmt.Errorf("parse calculated_at %q: %w", calculated, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateRecipeEstimatedPrice(ctx context.Context, recipeID string, price float64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE recipes SET estimated_price = ? WHERE id = ?`), price, recipeID)
	if err != nil {
		return fmt.Errorf("update estimated price: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound.WithErr(fmt.Errorf("recipe %s not found", recipeID))
	}
	return nil
}
