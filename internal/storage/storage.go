// Package storage provides the storage layer for Fibertrack using GORM.
// It owns the seven topology tables, the lifecycle transitions, link
// uniqueness, the listing query composer and the hierarchy aggregator.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"evalgo.org/fibertrack/internal/config"
	"evalgo.org/fibertrack/internal/validation"
	"evalgo.org/fibertrack/models"
)

// Storage provides the main storage interface for Fibertrack.
type Storage struct {
	db        *gorm.DB
	config    *config.Config
	logger    *slog.Logger
	validator *validation.Validator
	links     *keyedMutex
	now       func() time.Time

	// afterLoad, when set, runs inside Update's transaction between
	// loading the row and saving it.
	afterLoad func(tx *gorm.DB) error
}

// New creates a new Storage instance from the application configuration.
// It opens the configured driver, sizes the pool and, when enabled, migrates
// the schema.
func New(cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	dialector, err := openDialector(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger, cfg.Database.LogLevel, cfg.Database.SlowThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	maxOpen := cfg.Database.MaxOpenConns
	if cfg.Database.Driver == "sqlite" {
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases shared across queries.
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	s := NewWithDB(db, cfg, logger)

	if cfg.Database.AutoMigrate {
		if err := s.Migrate(context.Background()); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return s, nil
}

// NewWithDB wraps an already opened GORM handle.
func NewWithDB(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		db:        db,
		config:    cfg,
		logger:    logger,
		validator: validation.New(),
		links:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates or updates all topology tables and their indexes.
func (s *Storage) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Location{},
		&models.SplitterNode{},
		&models.Cable{},
		&models.Tube{},
		&models.Core{},
		&models.DistributionPoint{},
		&models.Subscriber{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.logger.Debug("schema migrated", "tables", len(Kinds()))
	return nil
}

// Close closes the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DatabaseInfo summarizes the connected database for health reporting.
type DatabaseInfo struct {
	Driver string           `json:"driver"`
	Rows   map[string]int64 `json:"rows"`
}

// GetDatabaseInfo returns the driver name and the raw row count of every
// table, soft-deleted rows included.
func (s *Storage) GetDatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	info := &DatabaseInfo{
		Driver: s.db.Dialector.Name(),
		Rows:   make(map[string]int64, len(Kinds())),
	}
	for _, k := range Kinds() {
		var n int64
		if err := s.db.WithContext(ctx).Table(k.Table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", k.Table, err)
		}
		info.Rows[k.Name] = n
	}
	return info, nil
}

// isRecordNotFound reports whether err is GORM's missing-row error.
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
