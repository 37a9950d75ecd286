package db

import (
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.LoginToken{},
		&model.Item{},
		&model.Order{},
		&model.OrderItem{},
		&model.Player{},
		&model.UserPlayer{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	// At most one EDITABLE order per user, enforced at the database so
	// concurrent cart creation cannot race past the application check.
	if err := DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_user_editable
		 ON orders(user_id) WHERE status = 'EDITABLE'`,
	).Error; err != nil {
		logger.Error("Failed to create editable-order index", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
