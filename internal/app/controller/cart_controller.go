package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/internal/app/service"
	apperrors "github.com/wkim/teamshop-backend/internal/errors"
	"github.com/wkim/teamshop-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type UpdateLineRequest struct {
	Quantity int     `json:"quantity" binding:"required"`
	Size     *string `json:"size"`
}

type SetNoteRequest struct {
	Note string `json:"note"`
}

// GetCart returns the user's editable order, creating one if needed
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	order, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// AddItem adds an item to the cart, merging matching lines
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Item and quantity are required")
		return
	}

	order, err := ctrl.cartService.AddItem(userID, input)
	if err != nil {
		ctrl.respondCartError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})

	log.Info("Cart item added", map[string]interface{}{
		"user_id": userID,
		"item_id": input.ItemID,
	})
}

// UpdateLine changes the quantity, and optionally the size, of a cart line
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateLine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity is required")
		return
	}

	order, err := ctrl.cartService.UpdateLineQuantity(userID, lineID, req.Quantity, req.Size)
	if err != nil {
		ctrl.respondCartError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// RemoveLine removes a cart line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.cartService.RemoveLine(userID, lineID)
	if err != nil {
		ctrl.respondCartError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// SetNote attaches a note to the cart
// PUT /api/v1/cart/note
func (ctrl *CartController) SetNote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid payload")
		return
	}

	order, err := ctrl.cartService.SetNote(userID, req.Note)
	if err != nil {
		ctrl.respondCartError(c, err, userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, userID uint) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrItemNotFound):
		apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
	case errors.Is(err, service.ErrItemNotAvailable):
		apperrors.BadRequest(c, apperrors.ItemNotFound, "This item is no longer available")
	case errors.Is(err, service.ErrInvalidSize):
		apperrors.BadRequest(c, apperrors.ItemInvalidSize, "Selected size is not offered for this item")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity must be between 1 and 99")
	case errors.Is(err, service.ErrLineNotFound):
		apperrors.NotFound(c, apperrors.OrderItemNotFound, "Cart line not found")
	case errors.Is(err, service.ErrOrderNotEditable):
		apperrors.Conflict(c, apperrors.OrderNotEditable, "This order was already submitted")
	default:
		log.Error("Cart operation failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
	}
}
