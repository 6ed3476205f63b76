package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery-pricer/internal/api"
	"grocery-pricer/internal/core/cache"
	"grocery-pricer/internal/core/preview"
	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/core/run"
	"grocery-pricer/internal/infrastructure/config"
	"grocery-pricer/internal/infrastructure/equivalence"
	"grocery-pricer/internal/infrastructure/store"
	"grocery-pricer/internal/infrastructure/tracing"
	"grocery-pricer/internal/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// repository 執行計算與 API 所需的儲存層
type repository interface {
	run.Repository
	Seed(ctx context.Context, seed *store.Seed) error
	GetRecipe(ctx context.Context, id string) (*pricing.Recipe, error)
	RecipeStorePrices(ctx context.Context, recipeID, weekOf string) ([]pricing.RecipeStorePrice, error)
	ListEquivalences(ctx context.Context) ([]pricing.Equivalence, error)
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		JSONConsole: cfg.App.Env == "production",
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("equivalence_source", cfg.Equivalence.Source),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Strings("excluded_stores", cfg.Pricing.ExcludedStores),
		zap.Int("workers", cfg.Pricing.Workers),
	)

	ctx := context.Background()

	// 追蹤
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		common.LogFatal("Failed to initialize tracing", zap.Error(err))
	}

	// 資料表
	tables, err := pricing.LoadTables(cfg.Pricing.TablesFile)
	if err != nil {
		common.LogFatal("Failed to load pricing tables", zap.Error(err))
	}
	if err := tables.Validate(); err != nil {
		common.LogFatal("Invalid pricing tables", zap.Error(err))
	}

	// 儲存層
	repo, err := openRepository(ctx, cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open repository", zap.Error(err))
	}
	defer repo.Close()

	// 重量換算快取
	loader, err := equivalence.NewLoader(cfg.Equivalence, repo)
	if err != nil {
		common.LogFatal("Failed to configure equivalence source", zap.Error(err))
	}
	equivalences := pricing.NewEquivalenceCache(loader, cfg.Equivalence.TTL, nil)
	if err := equivalences.Refresh(ctx); err != nil {
		common.LogWarn("初次載入重量換算失敗，將於使用時重試", zap.Error(err))
	}

	engine := pricing.NewEngine(tables, equivalences, pricing.Limits{
		DefaultCap:        cfg.Pricing.DefaultCap,
		MaxIngredientCost: cfg.Pricing.MaxIngredientCost,
		MaxRecipeTotal:    cfg.Pricing.MaxRecipeTotal,
	})

	// 指標
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	lock := run.NewLock(cfg.Pricing.RunMaxDuration, nil)
	runner := run.NewRunner(repo, engine, lock, run.NewMetrics(registry), run.Config{
		ExcludedStores: cfg.Pricing.ExcludedStores,
		Workers:        cfg.Pricing.Workers,
	})

	// 初始化快取
	previewCache, err := cache.New(cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if previewCache != nil {
		defer previewCache.Close()
	}

	var table preview.PriceTable
	if cfg.Preview.PricesFile != "" {
		table, err = preview.LoadPriceTable(cfg.Preview.PricesFile)
		if err != nil {
			common.LogFatal("Failed to load preview prices", zap.Error(err))
		}
	}
	previewSvc := preview.NewService(table, cfg.Pricing.ExcludedStores, previewCache)

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Runner:   runner,
		Rows:     repo,
		Preview:  previewSvc,
		DB:       repo,
		Gatherer: registry,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		common.LogWarn("追蹤關閉失敗", zap.Error(err))
	}
	if lock.IsRunning() {
		common.LogWarn("關閉時仍有價格計算進行中", zap.Any("status", lock.Status()))
	}

	common.LogInfo("Server exited")
}

// openRepository 依設定開啟儲存層並匯入種子資料
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (repository, error) {
	var repo repository
	switch cfg.Driver {
	case "memory":
		repo = store.NewMemoryStore()
	default:
		s, err := store.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		repo = s
	}

	if cfg.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			repo.Close()
			return nil, err
		}
		if err := repo.Seed(ctx, seed); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to seed repository: %w", err)
		}
		common.LogInfo("已匯入種子資料",
			zap.String("file", cfg.SeedFile),
			zap.Int("recipes", len(seed.Recipes)),
			zap.Int("stores", len(seed.Stores)),
		)
	}
	return repo, nil
}
