package pricing

import (
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/external/yahoo"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/database"
	"github.com/wonny/folio/pkg/httputil"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

const userAgent = "Mozilla/5.0 (compatible; folio/1.0)"

// NewYahooClient builds the rate-limited Yahoo client
func NewYahooClient(cfg *config.Config, log *logger.Logger, rc *redis.Client) *yahoo.Client {
	httpClient := httputil.New(log).
		WithHeader("User-Agent", userAgent).
		WithLocalLimit(cfg.Pricing.YahooRateLimit)
	if rc != nil && rc.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rc, "folio"),
			redis.YahooRateLimit(cfg.Pricing.YahooRateLimit),
		)
	}
	return yahoo.NewClient(httpClient, log, cfg.Pricing.YahooBaseURL)
}

// NewFromConfig assembles the configured price source.
// db may be nil for PRICE_SOURCE=yahoo, rc may be nil to skip caching.
// ⭐ SSOT: 가격 소스 조립은 여기서만
func NewFromConfig(cfg *config.Config, log *logger.Logger, db *database.DB, rc *redis.Client) (contracts.PriceSource, error) {
	benchmark := cfg.Pricing.BenchmarkSymbol

	var source contracts.PriceSource
	switch cfg.Pricing.Source {
	case config.SourceYahoo:
		source = NewYahooSource(NewYahooClient(cfg, log, rc), benchmark)
	case config.SourceStore:
		if db == nil {
			return nil, fmt.Errorf("price source %q requires a database", cfg.Pricing.Source)
		}
		source = NewStoreSource(db.Pool, benchmark)
	case config.SourceChain:
		if db == nil {
			return nil, fmt.Errorf("price source %q requires a database", cfg.Pricing.Source)
		}
		source = NewChainSource(
			NewStoreSource(db.Pool, benchmark),
			NewYahooSource(NewYahooClient(cfg, log, rc), benchmark),
		)
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Pricing.Source)
	}

	if rc != nil && rc.Enabled() {
		cache := redis.NewCache(rc, "folio")
		source = NewCachedSource(source, cache, cfg.Pricing.CacheTTL, benchmark, log)
	}

	log.WithFields(map[string]interface{}{
		"source":    cfg.Pricing.Source,
		"benchmark": benchmark,
		"cached":    rc != nil && rc.Enabled(),
	}).Info("Price source ready")

	return source, nil
}
