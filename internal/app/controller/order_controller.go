package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/service"
	apperrors "github.com/wkim/teamshop-backend/internal/errors"
	"github.com/wkim/teamshop-backend/internal/middleware"
	"github.com/wkim/teamshop-backend/internal/ws"
)

type OrderController struct {
	orderService service.OrderService
	hub          *ws.Hub
	upgrader     websocket.Upgrader
}

func NewOrderController(orderService service.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{
		orderService: orderService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin admin dashboards are allowed; auth happens
			// in the middleware before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type SubmitOrderRequest struct {
	Note *string `json:"note"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BulkStatusRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

type SetPaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

// Submit finalizes the user's cart
// POST /api/v1/orders/submit
func (ctrl *OrderController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	// The body is optional; an empty POST submits without a note.
	var req SubmitOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid payload")
			return
		}
	}

	order, err := ctrl.orderService.SubmitOrder(userID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.OrderCartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrOrderNotSubmitable):
			apperrors.Conflict(c, apperrors.OrderAlreadySubmitted, "This order was already submitted")
		default:
			log.Error("Failed to submit order", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// ListMine returns the authenticated user's orders
// GET /api/v1/orders
func (ctrl *OrderController) ListMine(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order. Non-admins only see their own.
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, middleware.IsAdmin(c), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// List returns all orders, optionally filtered by status
// GET /api/v1/admin/orders
func (ctrl *OrderController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	orders, err := ctrl.orderService.ListOrders(status)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to list orders", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateStatus sets an order's status
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Status is required")
		return
	}

	err := ctrl.orderService.UpdateOrderStatus(orderID, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
	})
}

// BulkUpdateStatus sets the status of several orders at once
// PUT /api/v1/admin/orders/status
func (ctrl *OrderController) BulkUpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Order IDs and status are required")
		return
	}

	updated, err := ctrl.orderService.BulkUpdateOrderStatus(req.OrderIDs, model.OrderStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return
		}
		log.Error("Failed to bulk update order status", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order statuses updated",
		"updated": updated,
	})
}

// SetPaid toggles the paid flag on an order
// PUT /api/v1/admin/orders/:id/paid
func (ctrl *OrderController) SetPaid(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Paid flag is required")
		return
	}

	if err := ctrl.orderService.SetOrderPaid(orderID, *req.Paid); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to update paid flag", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order paid flag updated",
	})
}

// Export downloads all orders as a spreadsheet
// GET /api/v1/admin/orders/export
func (ctrl *OrderController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.orderService.ExportOrders()
	if err != nil {
		log.Error("Failed to export orders", err)
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Feed upgrades the connection to the live order event stream
// GET /api/v1/admin/orders/feed
func (ctrl *OrderController) Feed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade order feed connection", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
