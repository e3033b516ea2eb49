package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mislam/topinspect/internal/infrastructure/repositories"
)

// Open creates a new database connection with production-ready settings
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates or updates the identity store tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&repositories.DBAuthIdentity{},
		&repositories.DBUserProfile{},
		&repositories.DBOtpChallenge{},
		&repositories.DBRefreshToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate identity tables: %w", err)
	}
	return nil
}
