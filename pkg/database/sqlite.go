package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alwanly/attribute-poll/internal/models"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
)

const memoryPath = ":memory:"

// NewSQLiteDB opens the attribute database. An empty path opens an in-memory
// database, which lives on a single connection.
func NewSQLiteDB(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	if path == "" {
		path = memoryPath
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == memoryPath {
		conn, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database connection: %w", err)
		}
		conn.SetMaxOpenConns(1)
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	models := []interface{}{
		&models.AttributeNode{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedInitialData creates the root of the attribute tree when the database is new.
func SeedInitialData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.AttributeNode{}).Where("type = ?", uint32(attribute.RootType)).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing root: %w", err)
	}

	if count == 0 {
		root := models.AttributeNode{
			Type:     uint32(attribute.RootType),
			ParentID: uint64(attribute.InvalidID),
		}
		if err := db.Create(&root).Error; err != nil {
			return fmt.Errorf("failed to seed attribute root: %w", err)
		}
	}

	return nil
}
