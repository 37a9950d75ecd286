package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/internal/app/service"
	apperrors "github.com/wkim/teamshop-backend/internal/errors"
	"github.com/wkim/teamshop-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RequestLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// RequestLink sends a magic sign-in link to the given email
// POST /api/v1/auth/request-link
func (ctrl *AuthController) RequestLink(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RequestLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login link request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A valid email address is required")
		return
	}

	if err := ctrl.authService.RequestLoginLink(req.Email, req.Name); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A valid email address is required")
			return
		}
		log.Error("Failed to send login link", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Failed to send sign-in link")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign-in link sent",
	})
}

// Verify redeems a magic-link token for a session
// POST /api/v1/auth/verify
func (ctrl *AuthController) Verify(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Token is required")
		return
	}

	user, pair, err := ctrl.authService.VerifyLoginToken(req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkExpired):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthLinkExpired, "This sign-in link has expired. Request a new one")
		case errors.Is(err, service.ErrLinkInvalid), errors.Is(err, service.ErrUserNotFound):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthLinkInvalid, "This sign-in link is invalid or was already used")
		default:
			log.Error("Failed to verify login token", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout revokes the current session token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := middleware.BearerToken(c)
	if token == "" {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
		log.Error("Failed to log out", err)
		apperrors.InternalError(c, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetCurrentUser(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.Unauthorized(c, "")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
