package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps both GORM and sql.DB
type DB struct {
	*sql.DB
	GORM *gorm.DB
}

// NewDB creates a new database connection using GORM
func NewDB(connStr string, debug bool) (*DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("✅ Database connected (GORM)!")
	return &DB{
		DB:   sqlDB,
		GORM: gormDB,
	}, nil
}

func (db *DB) Close() error {
	log.Info().Msg("🔌 Closing database connection...")
	return db.DB.Close()
}
