package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/app/service"
	"github.com/wkim/teamshop-backend/internal/db"
	"github.com/wkim/teamshop-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type noopMailer struct{}

func (noopMailer) Send(to, subject, htmlBody string) error { return nil }

func setupOrderControllerTest(t *testing.T) (*OrderController, *model.User, *model.Item, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	hub := ws.NewHub()
	go hub.Run()
	orderService := service.NewOrderService(orderRepo, noopMailer{}, hub, "")
	orderController := NewOrderController(orderService, hub)

	user := &model.User{Email: "fan@example.com", Name: "Fan"}
	require.NoError(t, testDB.Create(user).Error)

	item := &model.Item{Name: "Cap", PriceCents: 2500, Active: true, DisplayOrder: 1}
	require.NoError(t, testDB.Create(item).Error)

	gin.SetMode(gin.TestMode)
	return orderController, user, item, testDB
}

func createCartWithLine(t *testing.T, testDB *gorm.DB, user *model.User, item *model.Item) *model.Order {
	t.Helper()
	order := &model.Order{UserID: user.ID, Status: model.OrderStatusEditable}
	require.NoError(t, testDB.Create(order).Error)
	require.NoError(t, testDB.Create(&model.OrderItem{
		OrderID: order.ID, ItemID: item.ID, Quantity: 1, LineTotalCents: item.PriceCents,
	}).Error)
	return order
}

func TestOrderController_Submit(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	createCartWithLine(t, testDB, user, item)

	router := gin.New()
	router.POST("/orders/submit", setUserContext(user.ID, false), controller.Submit)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders/submit", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.OrderStatusSubmitted, resp.Order.Status)
	assert.Equal(t, int64(2500), resp.Order.TotalCents)
}

func TestOrderController_Submit_WithNote(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	createCartWithLine(t, testDB, user, item)

	router := gin.New()
	router.POST("/orders/submit", setUserContext(user.ID, false), controller.Submit)

	body, _ := json.Marshal(gin.H{"note": "rush please"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders/submit", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.OrderStatusSubmitted, resp.Order.Status)
	assert.Equal(t, "rush please", resp.Order.Note)
}

func TestOrderController_Submit_EmptyCart(t *testing.T) {
	controller, user, _, _ := setupOrderControllerTest(t)

	router := gin.New()
	router.POST("/orders/submit", setUserContext(user.ID, false), controller.Submit)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/orders/submit", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_CART_EMPTY")
}

func TestOrderController_GetOrder_ForeignOrderIs404(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	order := createCartWithLine(t, testDB, user, item)

	other := &model.User{Email: "other@example.com"}
	require.NoError(t, testDB.Create(other).Error)

	router := gin.New()
	router.GET("/orders/:id", setUserContext(other.ID, false), controller.GetOrder)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/orders/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_NOT_FOUND")
	_ = order
}

func TestOrderController_AdminList(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	order := createCartWithLine(t, testDB, user, item)
	require.NoError(t, testDB.Model(order).Update("status", model.OrderStatusSubmitted).Error)

	admin := &model.User{Email: "coach@team.example", IsAdmin: true}
	require.NoError(t, testDB.Create(admin).Error)

	router := gin.New()
	router.GET("/admin/orders", setUserContext(admin.ID, true), controller.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/orders?status=SUBMITTED", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []model.Order `json:"orders"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	// Unknown status is rejected
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/admin/orders?status=BOGUS", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_UpdateStatus(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	order := createCartWithLine(t, testDB, user, item)
	require.NoError(t, testDB.Model(order).Update("status", model.OrderStatusSubmitted).Error)

	router := gin.New()
	router.PUT("/admin/orders/:id/status", setUserContext(99, true), controller.UpdateStatus)

	body, _ := json.Marshal(gin.H{"status": "ORDERED"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/admin/orders/1/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got model.Order
	require.NoError(t, testDB.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusOrdered, got.Status)
}

func TestOrderController_SetPaid(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	order := createCartWithLine(t, testDB, user, item)

	router := gin.New()
	router.PUT("/admin/orders/:id/paid", setUserContext(99, true), controller.SetPaid)

	body, _ := json.Marshal(gin.H{"paid": true})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/admin/orders/1/paid", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got model.Order
	require.NoError(t, testDB.First(&got, order.ID).Error)
	assert.True(t, got.Paid)
}

func TestOrderController_Export(t *testing.T) {
	controller, user, item, testDB := setupOrderControllerTest(t)
	order := createCartWithLine(t, testDB, user, item)
	require.NoError(t, testDB.Model(order).Update("status", model.OrderStatusSubmitted).Error)

	router := gin.New()
	router.GET("/admin/orders/export", setUserContext(99, true), controller.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/orders/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}
