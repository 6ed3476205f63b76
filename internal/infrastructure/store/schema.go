package store

// schema 同時適用於 SQLite 與 PostgreSQL
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingredients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		estimated_price DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL,
		line_no INTEGER NOT NULL,
		ingredient_id TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (recipe_id, line_no)
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS unified_prices (
		store_id TEXT NOT NULL,
		generic_product_name TEXT NOT NULL DEFAULT '',
		regular_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		sale_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_unified_prices_store ON unified_prices (store_id)`,
	`CREATE TABLE IF NOT EXISTS promotions (
		store_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		valid_until TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_promotions_store ON promotions (store_id, valid_until)`,
	`CREATE TABLE IF NOT EXISTS reference_prices (
		store_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredient_equivalences (
		ingredient_name TEXT PRIMARY KEY,
		to_quantity DOUBLE PRECISION NOT NULL,
		to_unit TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_store_prices (
		recipe_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		week_of TEXT NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		missing_ingredients_count INTEGER NOT NULL,
		is_complete INTEGER NOT NULL,
		breakdown TEXT NOT NULL,
		calculated_at TEXT NOT NULL,
		PRIMARY KEY (recipe_id, store_id, week_of)
	)`,
}
