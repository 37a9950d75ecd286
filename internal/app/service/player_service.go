package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidPlayerInput = errors.New("invalid player input")
)

// PlayerInput carries the fields for a new roster entry. JerseyNumber
// arrives as a string from the request body and must parse as a
// non-negative integer.
type PlayerInput struct {
	FirstName    string
	LastName     string
	JerseyNumber string
}

// CreatePlayerResult reports the outcome of a create-and-link call.
// Linked is false when the player row was created but the link to the
// requesting user failed.
type CreatePlayerResult struct {
	Player *model.Player `json:"player"`
	Linked bool          `json:"linked"`
}

type PlayerService interface {
	ListPlayers() ([]model.Player, error)

	// CreatePlayer creates a roster entry and, when linkUserID is set,
	// links it to that user. A link failure does not roll back the
	// created player.
	CreatePlayer(input PlayerInput, linkUserID *uint) (*CreatePlayerResult, error)

	// LinkPlayer links a player to a user. Linking twice is a no-op.
	LinkPlayer(userID, playerID uint) error
	GetUserPlayers(userID uint) ([]model.Player, error)
}

type playerService struct {
	playerRepo repository.PlayerRepository
}

func NewPlayerService(playerRepo repository.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) ListPlayers() ([]model.Player, error) {
	return s.playerRepo.FindAll()
}

func (s *playerService) CreatePlayer(input PlayerInput, linkUserID *uint) (*CreatePlayerResult, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrInvalidPlayerInput
	}
	jerseyNumber, err := strconv.Atoi(strings.TrimSpace(input.JerseyNumber))
	if err != nil || jerseyNumber < 0 {
		return nil, ErrInvalidPlayerInput
	}

	logger.Info("Creating player", map[string]interface{}{
		"first_name":    firstName,
		"last_name":     lastName,
		"jersey_number": jerseyNumber,
	})

	player := &model.Player{FirstName: firstName, LastName: lastName, JerseyNumber: jerseyNumber}
	if err := s.playerRepo.Create(player); err != nil {
		return nil, err
	}

	result := &CreatePlayerResult{Player: player}
	if linkUserID != nil {
		if err := s.playerRepo.Link(*linkUserID, player.ID); err != nil {
			// Partial success: the player exists, the link did not.
			logger.Error("Player created but linking failed", err, map[string]interface{}{
				"player_id": player.ID,
				"user_id":   *linkUserID,
			})
			return result, nil
		}
		result.Linked = true
	}
	return result, nil
}

func (s *playerService) LinkPlayer(userID, playerID uint) error {
	logger.Info("Linking player to user", map[string]interface{}{
		"user_id":   userID,
		"player_id": playerID,
	})

	if _, err := s.playerRepo.FindByID(playerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	return s.playerRepo.Link(userID, playerID)
}

func (s *playerService) GetUserPlayers(userID uint) ([]model.Player, error) {
	return s.playerRepo.FindByUserID(userID)
}
