package store

import (
	"fmt"

	"github.com/CUknot/fairmind/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AutoMigrate creates or updates the tables for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Room{}, &models.Message{}, &models.Resolution{}, &models.Vote{})
}

// OpenMemory returns a Store on a private in-memory SQLite database with the
// schema migrated. It runs the same repositories as NewGorm does against
// PostgreSQL and is intended for local runs and tests.
func OpenMemory() (*Store, error) {
	dsn := fmt.Sprintf("file:fairmind-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite handle: %w", err)
	}
	// A single connection keeps the shared-cache database alive and
	// serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return NewGorm(db), nil
}
