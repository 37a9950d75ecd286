package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/internal/app/service"
	apperrors "github.com/wkim/teamshop-backend/internal/errors"
	"github.com/wkim/teamshop-backend/internal/middleware"
)

type PlayerController struct {
	playerService service.PlayerService
}

func NewPlayerController(playerService service.PlayerService) *PlayerController {
	return &PlayerController{
		playerService: playerService,
	}
}

type CreatePlayerRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	JerseyNumber string `json:"jersey_number"`
	Link         bool   `json:"link"`
}

// ListPlayers returns the full roster
// GET /api/v1/players
func (ctrl *PlayerController) ListPlayers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	players, err := ctrl.playerService.ListPlayers()
	if err != nil {
		log.Error("Failed to list players", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players": players,
		"count":   len(players),
	})
}

// CreatePlayer creates a roster entry, optionally linking it to the
// caller. A failed link still reports the created player.
// POST /api/v1/players
func (ctrl *PlayerController) CreatePlayer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "First and last name are required")
		return
	}

	var linkUserID *uint
	if req.Link {
		linkUserID = &userID
	}

	input := service.PlayerInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		JerseyNumber: req.JerseyNumber,
	}
	result, err := ctrl.playerService.CreatePlayer(input, linkUserID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlayerInput) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Player name and an integer jersey number are required")
			return
		}
		log.Error("Failed to create player", err)
		apperrors.InternalError(c, "")
		return
	}

	status := http.StatusCreated
	resp := gin.H{
		"player": result.Player,
		"linked": result.Linked,
	}
	if req.Link && !result.Linked {
		resp["warning"] = apperrors.PlayerLinkFailed
	}
	c.JSON(status, resp)
}

// LinkPlayer links a roster player to the caller. Idempotent.
// POST /api/v1/players/:id/link
func (ctrl *PlayerController) LinkPlayer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	playerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.playerService.LinkPlayer(userID, playerID); err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			apperrors.NotFound(c, apperrors.PlayerNotFound, "Player not found")
			return
		}
		log.Error("Failed to link player", err, map[string]interface{}{
			"user_id":   userID,
			"player_id": playerID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Player linked",
	})
}

// MyPlayers returns the players linked to the caller
// GET /api/v1/players/me
func (ctrl *PlayerController) MyPlayers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	players, err := ctrl.playerService.GetUserPlayers(userID)
	if err != nil {
		log.Error("Failed to list linked players", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players": players,
		"count":   len(players),
	})
}
