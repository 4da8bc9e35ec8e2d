package docstore

import (
	"fmt"
	"time"

	"github.com/clubhub/backend/internal/infrastructure/config"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Factory opens the document store selected in configuration
type Factory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	gormPlugins           []gorm.Plugin
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the SQL driver
func WithLogger(l *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = l
	}
}

// WithInMemoryFallback controls whether to fall back to the memory store
// when Redis is unavailable
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithGormPlugins registers plugins, such as query tracing, on the SQL driver
func WithGormPlugins(plugins ...gorm.Plugin) FactoryOption {
	return func(f *Factory) {
		f.gormPlugins = append(f.gormPlugins, plugins...)
	}
}

// NewFactory creates a new factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Store.InMemoryFallback,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open returns the store for the configured driver
func (f *Factory) Open() (Store, error) {
	switch f.cfg.Store.Driver {
	case config.StoreDriverMemory:
		f.logger.Warn("using in-memory document store, data is lost on restart")
		return NewMemoryStore(), nil
	case config.StoreDriverRedis:
		return f.openRedis()
	case config.StoreDriverSQL:
		return f.OpenSQL()
	default:
		return nil, fmt.Errorf("unknown store driver %q", f.cfg.Store.Driver)
	}
}

func (f *Factory) openRedis() (Store, error) {
	store, err := NewRedisStore(RedisOptions{
		Addr:       f.cfg.Redis.Addr(),
		Password:   f.cfg.Redis.Password,
		DB:         f.cfg.Redis.DB,
		PoolSize:   f.cfg.Redis.PoolSize,
		KeyPrefix:  f.cfg.Store.KeyPrefix,
		MaxRetries: f.cfg.Store.MaxRetries,
	})
	if err == nil {
		f.logger.Info("using Redis document store", zap.String("addr", f.cfg.Redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for document store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory document store. "+
		"Balances are not shared between instances.",
		zap.Error(err),
	)
	return NewMemoryStore(), nil
}

// OpenSQL connects to PostgreSQL and returns a GormStore
func (f *Factory) OpenSQL() (*GormStore, error) {
	dbCfg := f.cfg.Database
	db, err := gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(f.logger, logger.GormLevel(f.cfg.Log.Level), 200*time.Millisecond),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, p := range f.gormPlugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("failed to register gorm plugin %s: %w", p.Name(), err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(dbCfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	f.logger.Info("using SQL document store",
		zap.String("host", dbCfg.Host),
		zap.String("database", dbCfg.DBName),
	)
	return NewGormStore(db, f.cfg.Store.MaxRetries), nil
}
