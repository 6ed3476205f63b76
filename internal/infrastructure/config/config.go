package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
	Equivalence EquivalenceConfig `mapstructure:"equivalence"`
	Preview     PreviewConfig     `mapstructure:"preview"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Database    DatabaseConfig    `mapstructure:"database"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
	// LogFile 為空時不寫檔
	LogFile string `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// PricingConfig 定價引擎設定
type PricingConfig struct {
	DefaultCap        float64       `mapstructure:"default_cap"`
	MaxIngredientCost float64       `mapstructure:"max_ingredient_cost"`
	MaxRecipeTotal    float64       `mapstructure:"max_recipe_total"`
	ExcludedStores    []string      `mapstructure:"excluded_stores"`
	Workers           int           `mapstructure:"workers"`
	RunMaxDuration    time.Duration `mapstructure:"run_max_duration"`
	TablesFile        string        `mapstructure:"tables_file"`
}

// EquivalenceConfig 重量換算來源設定
type EquivalenceConfig struct {
	// Source 為 store、http 或 none
	Source  string        `mapstructure:"source"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	TTL     time.Duration `mapstructure:"ttl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PreviewConfig 預覽設定
type PreviewConfig struct {
	PricesFile string `mapstructure:"prices_file"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	// Driver 為 memory、sqlite 或 postgres
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	SeedFile string `mapstructure:"seed_file"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AuthConfig 管理端點驗證設定，JWTSecret 為空時不驗證
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// TracingConfig OpenTelemetry 追蹤設定
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter 為 stdout 或 otlp
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.BindEnv("database.dsn", "DATABASE_URL")
	viper.BindEnv("database.seed_file", "SEED_FILE")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis.addr", "REDIS_ADDR")
	viper.BindEnv("cache.redis.password", "REDIS_PASSWORD")
	viper.BindEnv("equivalence.source", "EQUIVALENCE_SOURCE")
	viper.BindEnv("equivalence.url", "EQUIVALENCE_URL")
	viper.BindEnv("equivalence.api_key", "EQUIVALENCE_API_KEY")
	viper.BindEnv("pricing.excluded_stores", "EXCLUDED_STORES")
	viper.BindEnv("pricing.tables_file", "PRICING_TABLES_FILE")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("auth.jwt_secret", "ADMIN_JWT_SECRET")
	viper.BindEnv("tracing.enabled", "OTEL_ENABLED")
	viper.BindEnv("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("log_file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "database_driver:", viper.GetString("database.driver"), "database_dsn:", maskDSN(viper.GetString("database.dsn")))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskDSN 遮罩連線字串中的密碼
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":****"
	}
	return dsn[:scheme+3] + creds + dsn[at:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "grocery-pricer")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 定價設定
	viper.SetDefault("pricing.default_cap", 50.0)
	viper.SetDefault("pricing.max_ingredient_cost", 100.0)
	viper.SetDefault("pricing.max_recipe_total", 500.0)
	viper.SetDefault("pricing.excluded_stores", []string{})
	viper.SetDefault("pricing.workers", 1)
	viper.SetDefault("pricing.run_max_duration", "10m")
	viper.SetDefault("pricing.tables_file", "")

	// 重量換算設定
	viper.SetDefault("equivalence.source", "store")
	viper.SetDefault("equivalence.ttl", "5m")
	viper.SetDefault("equivalence.timeout", "10s")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "10m")
	viper.SetDefault("cache.cleanup_interval", "1m")
	viper.SetDefault("cache.key_prefix", "grocery-pricer:preview:")
	viper.SetDefault("cache.redis.addr", "localhost:6379")
	viper.SetDefault("cache.redis.db", 0)

	// 資料庫設定
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "grocery-pricer.db")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 追蹤設定
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.exporter", "stdout")
	viper.SetDefault("tracing.sample_ratio", 0.1)

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "logs/grocery-pricer.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證定價設定
	if config.Pricing.DefaultCap <= 0 || config.Pricing.MaxIngredientCost <= 0 || config.Pricing.MaxRecipeTotal <= 0 {
		return fmt.Errorf("pricing caps must be positive")
	}
	if config.Pricing.Workers < 1 {
		return fmt.Errorf("invalid pricing workers")
	}
	if config.Pricing.RunMaxDuration <= 0 {
		return fmt.Errorf("invalid run max duration")
	}

	switch config.Equivalence.Source {
	case "store", "none":
	case "http":
		if config.Equivalence.URL == "" {
			return fmt.Errorf("equivalence url is required for http source")
		}
	default:
		return fmt.Errorf("unknown equivalence source %q", config.Equivalence.Source)
	}

	switch config.Database.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.Tracing.Enabled {
		switch config.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if config.Tracing.Endpoint == "" {
				return fmt.Errorf("tracing endpoint is required for otlp exporter")
			}
		default:
			return fmt.Errorf("unknown tracing exporter %q", config.Tracing.Exporter)
		}
		if config.Tracing.SampleRatio < 0 || config.Tracing.SampleRatio > 1 {
			return fmt.Errorf("tracing sample ratio must be within [0, 1]")
		}
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Backend != "memory" && config.Cache.Backend != "redis" {
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	return nil
}
