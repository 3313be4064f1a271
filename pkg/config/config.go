package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Price source selectors
const (
	SourceYahoo = "yahoo" // Yahoo Finance chart API 직접 조회
	SourceStore = "store" // PostgreSQL data.daily_prices 조회
	SourceChain = "chain" // store 우선, 없으면 yahoo
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional price store)
	Database DatabaseConfig

	// Redis (optional cross-request price cache)
	Redis RedisConfig

	// Price source
	Pricing PricingConfig

	// Valuation & indicator engine
	Engine EngineConfig

	// Price sync scheduler
	Sync SyncConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a price store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// PricingConfig holds price access adapter configuration
type PricingConfig struct {
	Source          string        // yahoo | store | chain
	YahooBaseURL    string        // Yahoo chart API base URL
	YahooRateLimit  int           // 초당 요청 수
	BenchmarkSymbol string        // 벤치마크 지수 심볼 (기본: ^GSPC)
	CacheTTL        time.Duration // redis 가격 캐시 TTL
}

// EngineConfig holds indicator engine parameters
type EngineConfig struct {
	RiskFreeRate      float64 // 연 무위험 수익률 (기본 0)
	DrawdownThreshold float64 // 유의미한 회복 구간 기준 (기본 5%)
	RollingWindows    []int   // 롤링 윈도우 (거래일)
	FetchWorkers      int     // 종목별 가격 동시 조회 수
}

// SyncConfig holds price sync job configuration
type SyncConfig struct {
	Schedule     string   // cron 표현식 (초 포함)
	Symbols      []string // 동기화 대상 종목
	LookbackDays int      // 조회 기간 (일)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Pricing: PricingConfig{
			Source:          strings.ToLower(getEnv("PRICE_SOURCE", SourceYahoo)),
			YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			YahooRateLimit:  getEnvAsInt("YAHOO_RATE_LIMIT", 5),
			BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "^GSPC"),
			CacheTTL:        getEnvAsDuration("PRICE_CACHE_TTL", "24h"),
		},

		Engine: EngineConfig{
			RiskFreeRate:      getEnvAsFloat("RISK_FREE_RATE", 0),
			DrawdownThreshold: getEnvAsFloat("DRAWDOWN_THRESHOLD", 0.05),
			RollingWindows:    getEnvAsIntList("ROLLING_WINDOWS", []int{20, 60}),
			FetchWorkers:      getEnvAsInt("FETCH_WORKERS", 8),
		},

		Sync: SyncConfig{
			Schedule:     getEnv("SYNC_SCHEDULE", "0 30 17 * * MON-FRI"),
			Symbols:      getEnvAsList("SYNC_SYMBOLS", nil),
			LookbackDays: getEnvAsInt("SYNC_LOOKBACK_DAYS", 10),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Pricing.Source {
	case SourceYahoo:
	case SourceStore, SourceChain:
		// store 기반 소스는 DB 필수
		if !c.Database.Enabled() {
			return fmt.Errorf("DATABASE_URL is required for PRICE_SOURCE=%s", c.Pricing.Source)
		}
	default:
		return fmt.Errorf("PRICE_SOURCE must be one of: yahoo, store, chain")
	}

	if c.Engine.DrawdownThreshold < 0 || c.Engine.DrawdownThreshold >= 1 {
		return fmt.Errorf("DRAWDOWN_THRESHOLD must be in [0, 1)")
	}
	for _, w := range c.Engine.RollingWindows {
		if w < 2 {
			return fmt.Errorf("ROLLING_WINDOWS entries must be >= 2, got %d", w)
		}
	}
	if c.Engine.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsIntList(key string, defaultValue []int) []int {
	parts := getEnvAsList(key, nil)
	if len(parts) == 0 {
		return defaultValue
	}

	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}
