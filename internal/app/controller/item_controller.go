package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/internal/app/service"
	apperrors "github.com/wkim/teamshop-backend/internal/errors"
	"github.com/wkim/teamshop-backend/internal/middleware"
)

type ItemController struct {
	catalogService service.CatalogService
}

func NewItemController(catalogService service.CatalogService) *ItemController {
	return &ItemController{
		catalogService: catalogService,
	}
}

type SwapOrderRequest struct {
	ItemAID   uint `json:"item_a_id" binding:"required"`
	PositionA int  `json:"position_a" binding:"required"`
	ItemBID   uint `json:"item_b_id" binding:"required"`
	PositionB int  `json:"position_b" binding:"required"`
}

type MoveItemRequest struct {
	Position int `json:"position" binding:"required"`
}

// ListItems returns the catalog in display order. Admins see inactive
// items too.
// GET /api/v1/items
func (ctrl *ItemController) ListItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	includeInactive := middleware.IsAdmin(c) && c.Query("include_inactive") == "true"

	items, err := ctrl.catalogService.ListItems(includeInactive)
	if err != nil {
		log.Error("Failed to list items", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetItem returns a single item
// GET /api/v1/items/:id
func (ctrl *ItemController) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ctrl.catalogService.GetItem(id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item": item,
	})
}

// CreateItem creates a catalog item at the end of the display order
// POST /api/v1/admin/items
func (ctrl *ItemController) CreateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid item payload")
		return
	}

	item, err := ctrl.catalogService.CreateItem(input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidItemInput) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Item name is required and price cannot be negative")
			return
		}
		log.Error("Failed to create item", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item": item,
	})
}

// UpdateItem updates an item's fields
// PUT /api/v1/admin/items/:id
func (ctrl *ItemController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid item payload")
		return
	}

	item, err := ctrl.catalogService.UpdateItem(id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
		case errors.Is(err, service.ErrInvalidItemInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Item name is required and price cannot be negative")
		default:
			log.Error("Failed to update item", err, map[string]interface{}{
				"item_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item": item,
	})
}

// DeleteItem removes an item not referenced by any order
// DELETE /api/v1/admin/items/:id
func (ctrl *ItemController) DeleteItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.catalogService.DeleteItem(id); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
		case errors.Is(err, service.ErrItemInUse):
			apperrors.Conflict(c, apperrors.ItemInUse, "Item is referenced by existing orders. Deactivate it instead")
		default:
			log.Error("Failed to delete item", err, map[string]interface{}{
				"item_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item deleted",
	})
}

// SwapDisplayOrder exchanges the display positions of two items
// POST /api/v1/admin/items/swap
func (ctrl *ItemController) SwapDisplayOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SwapOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Both items and their expected positions are required")
		return
	}

	err := ctrl.catalogService.SwapDisplayOrder(req.ItemAID, req.PositionA, req.ItemBID, req.PositionB)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
		case errors.Is(err, service.ErrInvalidPosition):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Cannot swap an item with itself")
		case errors.Is(err, service.ErrDisplayOrderConflict):
			apperrors.Conflict(c, apperrors.ItemOrderConflict, "Display order changed. Reload and try again")
		default:
			log.Error("Failed to swap display order", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Display order swapped",
	})
}

// MoveItem moves an item to a display position, shifting the rest
// POST /api/v1/admin/items/:id/move
func (ctrl *ItemController) MoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Target position is required")
		return
	}

	if err := ctrl.catalogService.MoveItemToPosition(id, req.Position); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "Item not found")
		case errors.Is(err, service.ErrInvalidPosition):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Position is out of range")
		case errors.Is(err, service.ErrDisplayOrderConflict):
			apperrors.Conflict(c, apperrors.ItemOrderConflict, "Display order changed. Reload and try again")
		default:
			log.Error("Failed to move item", err, map[string]interface{}{
				"item_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item moved",
	})
}

// parseIDParam parses a numeric path parameter, responding with a 400
// on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
