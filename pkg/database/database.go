package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kzsync/pkg/database/models"
)

// NewConnection opens the canonical Postgres store and configures the
// shared connection pool.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get the sql connection: %w", err)
	}

	// Set the pool values.
	sqlDb.SetMaxOpenConns(100)
	sqlDb.SetMaxIdleConns(10)
	sqlDb.SetConnMaxLifetime(time.Hour)
	sqlDb.SetConnMaxIdleTime(time.Hour)

	// Test the connection.
	if err := sqlDb.Ping(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewLegacyConnection opens the historical MySQL schema. Only the migration
// command reads from it; nothing ever writes to it.
func NewLegacyConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to legacy database: %w", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get the sql connection: %w", err)
	}

	if err := sqlDb.Ping(); err != nil {
		sqlDb.Close()
		return nil, fmt.Errorf("failed to ping legacy database: %w", err)
	}

	return db, nil
}

// VerifyModes checks the fixed mode rows seeded by migration. Anything but
// the exact expected count means the schema is corrupted and the process
// must not ingest into it.
func VerifyModes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Mode{}).Count(&count).Error; err != nil {
		return fmt.Errorf("couldn't count the mode rows: %w", err)
	}

	if count != models.ModeCount {
		return fmt.Errorf("expected %d mode rows, found %d", models.ModeCount, count)
	}

	return nil
}
