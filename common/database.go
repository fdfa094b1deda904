package common

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the sqlite database at path and makes it available through GetDB
func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection avoids "database is locked" under the job goroutines
	sqlDB.SetMaxOpenConns(1)

	DB = db
	return DB, nil
}

// TestDBInit opens a private in-memory database with the job tables migrated
func TestDBInit() *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := Init(dsn)
	if err != nil {
		log.Fatal("Failed to open test database:", err)
	}
	if err := AutoMigrateJobs(db); err != nil {
		log.Fatal("Failed to migrate test database:", err)
	}
	return db
}

// GetDB returns the connection opened by Init
func GetDB() *gorm.DB {
	return DB
}
