package repository

import (
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type PlayerRepository interface {
	Create(player *model.Player) error
	FindByID(id uint) (*model.Player, error)
	FindAll() ([]model.Player, error)

	// Link creates a user-player link. Linking an already linked pair
	// is a no-op.
	Link(userID, playerID uint) error
	IsLinked(userID, playerID uint) (bool, error)
	FindByUserID(userID uint) ([]model.Player, error)
}

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(player *model.Player) error {
	logger.Debug("Creating player in database", map[string]interface{}{
		"first_name":    player.FirstName,
		"last_name":     player.LastName,
		"jersey_number": player.JerseyNumber,
	})

	if err := r.db.Create(player).Error; err != nil {
		logger.Error("Failed to create player in database", err, map[string]interface{}{
			"last_name": player.LastName,
		})
		return err
	}
	return nil
}

func (r *playerRepository) FindByID(id uint) (*model.Player, error) {
	var player model.Player
	if err := r.db.First(&player, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find player by ID in database", err, map[string]interface{}{
				"player_id": id,
			})
		}
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) FindAll() ([]model.Player, error) {
	var players []model.Player
	if err := r.db.Order("last_name ASC, first_name ASC").Find(&players).Error; err != nil {
		logger.Error("Failed to find players in database", err)
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) Link(userID, playerID uint) error {
	linked, err := r.IsLinked(userID, playerID)
	if err != nil {
		return err
	}
	if linked {
		logger.Debug("User already linked to player, skipping", map[string]interface{}{
			"user_id":   userID,
			"player_id": playerID,
		})
		return nil
	}

	link := model.UserPlayer{UserID: userID, PlayerID: playerID}
	if err := r.db.Create(&link).Error; err != nil {
		logger.Error("Failed to link user to player in database", err, map[string]interface{}{
			"user_id":   userID,
			"player_id": playerID,
		})
		return err
	}

	logger.Debug("User linked to player in database", map[string]interface{}{
		"user_id":   userID,
		"player_id": playerID,
	})
	return nil
}

func (r *playerRepository) IsLinked(userID, playerID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.UserPlayer{}).
		Where("user_id = ? AND player_id = ?", userID, playerID).
		Count(&count).Error; err != nil {
		logger.Error("Failed to check user-player link in database", err, map[string]interface{}{
			"user_id":   userID,
			"player_id": playerID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *playerRepository) FindByUserID(userID uint) ([]model.Player, error) {
	var players []model.Player
	if err := r.db.
		Joins("JOIN user_players ON user_players.player_id = players.id").
		Where("user_players.user_id = ?", userID).
		Order("players.last_name ASC, players.first_name ASC").
		Find(&players).Error; err != nil {
		logger.Error("Failed to find players by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return players, nil
}
