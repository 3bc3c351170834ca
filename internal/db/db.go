package db

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kravietz/reporter/internal/config"
)

// Connect opens a GORM database connection from config and migrates the
// fact and dimension tables.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&UserAgent{}, &Tag{}, &Report{}); err != nil {
		return nil, err
	}

	return db, nil
}

// open dials the database without migrating, so reconnects after a dropped
// connection stay cheap. The underlying sql pool is bounded: each pooled
// connection carries at most one in-flight statement, which is the only
// serialization the write path needs.
func open(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN())
	if dsn == "" {
		return nil, errors.New("database configuration is required (APP_DATABASE_URL or DB_* variables)")
	}
	if cfg.DatabaseURL != "" &&
		!strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxConns)

	return db, nil
}
