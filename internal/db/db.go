// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"fmt"
	"log"
	"time"

	"github.com/diewo77/go-sales/internal/config"
	"github.com/diewo77/go-sales/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// connectAttempts and connectBackoff leave Postgres time to start under compose.
var (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// PostgresDSN picks DATABASE_DSN when set, else builds one from the discrete fields.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if dsn := NormalizeDSN(cfg.RawDSN); dsn != "" {
		return dsn
	}
	return cfg.DSN()
}

// Open connects to the configured driver, retrying while the server comes up.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
		log.Printf("[DB] Using sqlite: %s", cfg.SQLitePath)
	case DriverPostgres, "":
		dsn := PostgresDSN(cfg)
		dialector = postgres.Open(dsn)
		log.Printf("[DB] Using DSN: %s", MaskDSN(dsn))
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Printf("[DB] connection attempt %d/%d failed: %v", i+1, connectAttempts, err)
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return db, nil
}

// Migrate creates or updates every table with gorm's AutoMigrate.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Setup applies the schema the way cfg asks: versioned SQL migrations on
// Postgres when SQLMigrations is set, AutoMigrate when Migrations is set.
func Setup(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.SQLMigrations && cfg.Database.Driver != DriverSQLite {
		log.Println("[DB] Running SQL migrations...")
		return RunSQLMigrations(ToURLDSN(PostgresDSN(cfg.Database)))
	}
	if cfg.App.Migrations {
		return Migrate(db)
	}
	return nil
}
