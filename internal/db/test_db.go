package db

import (
	"fmt"
	"log"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&model.User{},
		&model.LoginToken{},
		&model.Item{},
		&model.Order{},
		&model.OrderItem{},
		&model.Player{},
		&model.UserPlayer{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	// Same partial index the production migration creates.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_user_editable
		 ON orders(user_id) WHERE status = 'EDITABLE'`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create test index: %w", err)
	}

	return db, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{"user_players", "players", "order_items", "orders", "items", "login_tokens", "users"}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
