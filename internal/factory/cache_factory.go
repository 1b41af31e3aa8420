package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/sms-risk-detector/internal/adapters/cache"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheType := f.cfg.GetString("cache.type")
	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.logger, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(sqlitePath, f.logger, cleanupFreq)
	case "mysql":
		return cache.NewMySQLCache(f.cfg.GetString("cache.mysql_dsn"), f.logger, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// CacheSettings returns whether verdicts are cached and for how long
func (f *CacheFactory) CacheSettings() (core.CacheSettings, error) {
	ttl, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return core.CacheSettings{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	return core.CacheSettings{
		Enabled: f.cfg.GetBool("cache.enabled"),
		TTL:     ttl,
	}, nil
}
