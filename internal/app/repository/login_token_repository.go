package repository

import (
	"time"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type LoginTokenRepository interface {
	Create(token *model.LoginToken) error
	FindByToken(token string) (*model.LoginToken, error)
	Consume(id uint, at time.Time) error
	DeleteExpired(before time.Time) (int64, error)
}

type loginTokenRepository struct {
	db *gorm.DB
}

func NewLoginTokenRepository(db *gorm.DB) LoginTokenRepository {
	return &loginTokenRepository{db: db}
}

func (r *loginTokenRepository) Create(token *model.LoginToken) error {
	logger.Debug("Creating login token in database", map[string]interface{}{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})

	if err := r.db.Create(token).Error; err != nil {
		logger.Error("Failed to create login token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}
	return nil
}

func (r *loginTokenRepository) FindByToken(token string) (*model.LoginToken, error) {
	var lt model.LoginToken
	if err := r.db.Where("token = ?", token).First(&lt).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find login token in database", err)
		}
		return nil, err
	}
	return &lt, nil
}

func (r *loginTokenRepository) Consume(id uint, at time.Time) error {
	if err := r.db.Model(&model.LoginToken{}).
		Where("id = ?", id).
		Update("consumed_at", at).Error; err != nil {
		logger.Error("Failed to consume login token in database", err, map[string]interface{}{
			"token_id": id,
		})
		return err
	}
	return nil
}

func (r *loginTokenRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ? OR consumed_at IS NOT NULL", before).
		Delete(&model.LoginToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired login tokens", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
