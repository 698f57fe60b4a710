package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// Database holds the relational connection used by the settings repository
type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewDatabase opens a postgres or sqlite connection from cfg. GORM logs go
// through zapLogger at a level derived from logLevel.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel string) (*Database, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	gormCfg := &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.GormLevel(logLevel), slowQueryThreshold),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
		gormCfg.PrepareStmt = true
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer; one connection serializes increments
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: cfg.Driver}, nil
}

// AutoMigrate creates the settings table for drivers not managed by SQL
// migrations (sqlite). Postgres schemas come from the migrations directory.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&models.SettingModel{}); err != nil {
		return fmt.Errorf("auto-migrate settings: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	return d.PingContext(context.Background())
}

// PingContext checks the connection within ctx
func (d *Database) PingContext(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
