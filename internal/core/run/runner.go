package run

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/pkg/common"
)

var tracer = otel.Tracer("grocery-pricer/run")

// Config 計算流程設定
type Config struct {
	ExcludedStores []string
	// Workers 同時處理的商店數，<= 1 表示依序處理
	Workers int
}

// Summary 執行摘要
type Summary struct {
	RunID            string    `json:"run_id,omitempty"`
	Success          bool      `json:"success"`
	RecipesProcessed int       `json:"recipes_processed"`
	StoresProcessed  int       `json:"stores_processed"`
	RowsWritten      int       `json:"rows_written"`
	RecipesUpdated   int       `json:"recipes_updated"`
	Errors           []string  `json:"errors"`
	WeekOf           string    `json:"week_of,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	DurationMS       int64     `json:"duration_ms"`
}

// Runner 對所有允許的商店 × 食譜計算價格
type Runner struct {
	repo    Repository
	engine  *pricing.Engine
	lock    *Lock
	metrics *Metrics
	cfg     Config
	now     func() time.Time

	mu   sync.RWMutex
	last *Summary
}

// NewRunner 創建執行器，metrics 可為 nil
func NewRunner(repo Repository, engine *pricing.Engine, lock *Lock, metrics *Metrics, cfg Config) *Runner {
	if lock == nil {
		lock = NewLock(0, nil)
	}
	return &Runner{
		repo:    repo,
		engine:  engine,
		lock:    lock,
		metrics: metrics,
		cfg:     cfg,
		now:     lock.now,
	}
}

// Lock 回傳執行鎖
func (r *Runner) Lock() *Lock { return r.lock }

// LastSummary 最近一次執行摘要
func (r *Runner) LastSummary() *Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	s := *r.last
	s.Errors = append([]string(nil), r.last.Errors...)
	return &s
}

// errorList 並行收集錯誤
type errorList struct {
	mu   sync.Mutex
	errs []string
}

func (l *errorList) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.errs = append(l.errs, msg)
	l.mu.Unlock()
}

func (l *errorList) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.errs))
	copy(out, l.errs)
	sort.Strings(out)
	return out
}

// Run 執行一次完整計算
//
// 已在執行中時回傳 ErrRunInProgress 且不產生任何副作用。
// 無論如何結束，仍持有的執行鎖都會被釋放；已被重置或接管時不動到新的執行。
func (r *Runner) Run(ctx context.Context) (summary *Summary, err error) {
	ticket, err := r.lock.TryStart()
	if err != nil {
		r.metrics.rejected()
		return &Summary{Success: false, Errors: []string{common.ErrRunInProgress.Message}}, err
	}
	r.metrics.runStarted()
	startedAt := ticket.StartedAt

	weekOf := WeekOf(startedAt)
	summary = &Summary{
		RunID:     common.GenerateUUID(),
		WeekOf:    weekOf,
		StartedAt: startedAt,
		Errors:    []string{},
	}
	errs := &errorList{}

	ctx, span := tracer.Start(ctx, "pricing.run")
	span.SetAttributes(
		attribute.String("run.id", summary.RunID),
		attribute.String("run.week_of", weekOf),
	)

	defer func() {
		if p := recover(); p != nil {
			errs.add("panic: %v", p)
			summary.Success = false
			err = common.ErrRunFailed.WithErr(fmt.Errorf("panic: %v", p))
		}
		summary.Errors = errs.list()
		duration := r.now().Sub(startedAt)
		summary.DurationMS = duration.Milliseconds()

		if !r.lock.Finish(ticket, summary.Success) {
			errs.add("run lock was reset or taken over before this run finished")
			summary.Errors = errs.list()
		}
		outcome := "failed"
		if summary.Success {
			outcome = "succeeded"
		}
		r.metrics.runFinished(outcome, duration)

		span.SetAttributes(
			attribute.Int("run.rows_written", summary.RowsWritten),
			attribute.Int("run.errors", len(summary.Errors)),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run failed")
		}
		span.End()

		r.mu.Lock()
		r.last = summary
		r.mu.Unlock()

		common.LogInfo("價格計算完成",
			zap.String("run_id", summary.RunID),
			zap.Bool("success", summary.Success),
			zap.Int("recipes", summary.RecipesProcessed),
			zap.Int("stores", summary.StoresProcessed),
			zap.Int("rows", summary.RowsWritten),
			zap.Int("errors", len(summary.Errors)),
			zap.Duration("duration", duration),
		)
	}()

	common.LogInfo("開始價格計算", zap.String("run_id", summary.RunID), zap.String("week_of", weekOf))

	recipes, ingredients, stores, err := r.load(ctx)
	if err != nil {
		errs.add("%v", err)
		return summary, common.ErrRunFailed.WithErr(err)
	}
	summary.RecipesProcessed = len(recipes)
	summary.StoresProcessed = len(stores)

	rows := r.priceAll(ctx, recipes, ingredients, stores, weekOf, startedAt, errs)
	summary.RowsWritten = rows

	updated, err := r.rollup(ctx, weekOf, stores, errs)
	if err != nil {
		errs.add("rollup: %v", err)
		return summary, common.ErrRunFailed.WithErr(err)
	}
	summary.RecipesUpdated = updated
	summary.Success = true
	return summary, nil
}

func (r *Runner) load(ctx context.Context) ([]pricing.Recipe, map[string]pricing.Ingredient, []pricing.Store, error) {
	recipes, err := r.repo.ListRecipes(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load recipes: %w", err)
	}
	list, err := r.repo.ListIngredients(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load ingredients: %w", err)
	}
	ingredients := make(map[string]pricing.Ingredient, len(list))
	for _, ing := range list {
		ingredients[ing.ID] = ing
	}
	stores, err := r.repo.ListStores(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load stores: %w", err)
	}
	return recipes, ingredients, r.allowedStores(stores), nil
}

// allowedStores 在任何計算前先排除不允許的商店
func (r *Runner) allowedStores(stores []pricing.Store) []pricing.Store {
	excluded := make(map[string]bool, len(r.cfg.ExcludedStores))
	for _, id := range r.cfg.ExcludedStores {
		excluded[id] = true
	}
	out := make([]pricing.Store, 0, len(stores))
	for _, s := range stores {
		if excluded[s.ID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *Runner) priceAll(ctx context.Context, recipes []pricing.Recipe, ingredients map[string]pricing.Ingredient, stores []pricing.Store, weekOf string, now time.Time, errs *errorList) int {
	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		written int
	)
	g.SetLimit(workers)

	for _, store := range stores {
		store := store
		g.Go(func() error {
			// 每個商店在獨立 goroutine 執行，Run 的 recover 接不到這裡的 panic
			defer func() {
				if p := recover(); p != nil {
					errs.add("store %s: panic: %v", store.ID, p)
					common.LogError("商店價格計算 panic", zap.String("store_id", store.ID), zap.Any("panic", p))
				}
			}()
			n := r.priceStore(ctx, store, recipes, ingredients, weekOf, now, errs)
			mu.Lock()
			written += n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return written
}

func (r *Runner) priceStore(ctx context.Context, store pricing.Store, recipes []pricing.Recipe, ingredients map[string]pricing.Ingredient, weekOf string, now time.Time, errs *errorList) (written int) {
	ctx, span := tracer.Start(ctx, "pricing.store")
	span.SetAttributes(attribute.String("store.id", store.ID))
	defer func() {
		span.SetAttributes(attribute.Int("store.rows_written", written))
		span.End()
	}()

	catalog, err := r.repo.StoreCatalog(ctx, store.ID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load catalog")
		for range recipes {
			r.metrics.pairFailed()
		}
		errs.add("store %s: load catalog: %v", store.ID, err)
		common.LogError("商店目錄載入失敗", zap.String("store_id", store.ID), zap.Error(err))
		return 0
	}
	if catalog.AsOf.IsZero() {
		catalog.AsOf = now
	}

	for _, recipe := range recipes {
		if err := r.pricePair(ctx, recipe, ingredients, store, weekOf, catalog, now); err != nil {
			r.metrics.pairFailed()
			errs.add("recipe %s / store %s: %v", recipe.ID, store.ID, err)
			common.LogWarn("食譜價格計算失敗",
				zap.String("recipe_id", recipe.ID),
				zap.String("store_id", store.ID),
				zap.Error(err),
			)
			continue
		}
		written++
	}
	return written
}

// pricePair 單一 (食譜, 商店) 計算，panic 轉為錯誤
func (r *Runner) pricePair(ctx context.Context, recipe pricing.Recipe, ingredients map[string]pricing.Ingredient, store pricing.Store, weekOf string, catalog pricing.StoreCatalog, now time.Time) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	row := r.engine.PriceRecipe(ctx, recipe, ingredients, store.ID, weekOf, catalog, now)
	if err := r.repo.UpsertRecipeStorePrice(ctx, row); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	r.metrics.rowWritten(row.IsComplete)
	return nil
}

// rollup 以本週允許商店中完整結果的最低總價更新食譜估價
func (r *Runner) rollup(ctx context.Context, weekOf string, stores []pricing.Store, errs *errorList) (int, error) {
	rows, err := r.repo.ListRecipeStorePrices(ctx, weekOf)
	if err != nil {
		return 0, fmt.Errorf("list recipe store prices: %w", err)
	}

	allowed := make(map[string]bool, len(stores))
	for _, s := range stores {
		allowed[s.ID] = true
	}

	best := make(map[string]float64)
	for _, row := range rows {
		if !row.IsComplete || row.TotalCost <= 0 || !allowed[row.StoreID] {
			continue
		}
		if cur, ok := best[row.RecipeID]; !ok || row.TotalCost < cur {
			best[row.RecipeID] = row.TotalCost
		}
	}

	ids := make([]string, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updated := 0
	for _, id := range ids {
		if err := r.repo.UpdateRecipeEstimatedPrice(ctx, id, best[id]); err != nil {
			errs.add("recipe %s: update estimated price: %v", id, err)
			continue
		}
		updated++
	}
	return updated, nil
}
