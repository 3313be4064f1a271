package commands

import (
	"context"
	"fmt"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/pricing"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/database"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

// deps holds the shared infrastructure of a command
type deps struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB  // nil without DATABASE_URL
	rc     *redis.Client // disabled client without REDIS_ENABLED
	source contracts.PriceSource
}

// loadConfig loads config and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// loadDeps wires config, logger, optional store/cache and the configured price source
func loadDeps(ctx context.Context) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: logger.New(cfg)}

	if cfg.Database.Enabled() {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		d.db = db
		d.log.Info("Connected to database")
	}

	rc, err := redis.New(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	d.rc = rc

	source, err := pricing.NewFromConfig(cfg, d.log, d.db, d.rc)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("price source: %w", err)
	}
	d.source = source

	d.log.WithFields(map[string]interface{}{
		"source":    cfg.Pricing.Source,
		"benchmark": cfg.Pricing.BenchmarkSymbol,
		"database":  d.db != nil,
		"redis":     rc.Enabled(),
	}).Debug("Dependencies ready")

	return d, nil
}

// Close releases connections
func (d *deps) Close() {
	if d.rc != nil {
		d.rc.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
