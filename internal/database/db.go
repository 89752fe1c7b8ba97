package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Options configures the database connection
type Options struct {
	Driver  string
	DSN     string
	LogMode bool
}

// Open connects to the database and migrates the schema
func Open(opts Options) (*gorm.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	db, err := gorm.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(opts.LogMode)

	if driver == "sqlite3" {
		// every sqlite connection to :memory: is a separate database
		db.DB().SetMaxOpenConns(1)
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
		db.DB().SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates and updates all tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&CategoryRecord{},
		&MenuItemRecord{},
		&OrderRecord{},
		&LineItemRecord{},
		&CounterRecord{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
