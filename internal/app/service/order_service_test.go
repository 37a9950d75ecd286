package service

import (
	"bytes"
	"sync"
	"testing"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []uint
}

func (n *fakeNotifier) NotifyOrderSubmitted(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
}

func setupOrderServiceTest(t *testing.T) (OrderService, CartService, *model.User, *fakeMailer, *fakeNotifier, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	itemRepo := repository.NewItemRepository(testDB)
	playerRepo := repository.NewPlayerRepository(testDB)

	m := &fakeMailer{}
	notifier := &fakeNotifier{}
	orderService := NewOrderService(orderRepo, m, notifier, "admin@team.example")
	cartService := NewCartService(orderRepo, itemRepo, playerRepo)

	user := &model.User{
		Email: "fan@example.com",
		Name:  "Fan",
	}
	testDB.Create(user)

	return orderService, cartService, user, m, notifier, testDB
}

func TestOrderService_SubmitOrder_Success(t *testing.T) {
	orderService, cartService, user, m, notifier, testDB := setupOrderServiceTest(t)
	jersey := createTestItem(t, testDB, "Jersey", 3500, 1, "M")

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: jersey.ID, Quantity: 2, Size: "M"})
	require.NoError(t, err)

	order, err := orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSubmitted, order.Status)
	assert.Equal(t, int64(7000), order.TotalCents)
	assert.False(t, order.Paid)

	// Admin notification went out
	require.Len(t, m.sent, 1)
	assert.Equal(t, "admin@team.example", m.sent[0].To)
	assert.Contains(t, m.sent[0].Body, "Jersey")
	assert.Contains(t, m.sent[0].Body, "$70.00")

	// Feed event went out
	assert.Equal(t, []uint{order.ID}, notifier.orders)
}

func TestOrderService_SubmitOrder_WithNote(t *testing.T) {
	orderService, cartService, user, m, _, testDB := setupOrderServiceTest(t)
	jersey := createTestItem(t, testDB, "Jersey", 3500, 1, "M")

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: jersey.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)

	note := "rush please"
	order, err := orderService.SubmitOrder(user.ID, &note)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSubmitted, order.Status)
	assert.Equal(t, "rush please", order.Note)

	// The note survives a reload and shows up in the admin email
	got, err := orderService.GetOrder(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "rush please", got.Note)

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0].Body, "rush please")
}

func TestOrderService_SubmitOrder_NotePersistsWhenMailFails(t *testing.T) {
	orderService, cartService, user, m, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)
	m.sendErr = assert.AnError

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)

	note := "rush please"
	order, err := orderService.SubmitOrder(user.ID, &note)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSubmitted, order.Status)
	assert.Equal(t, "rush please", order.Note)
}

func TestOrderService_SubmitOrder_EmptyCartRejected(t *testing.T) {
	orderService, cartService, user, m, _, _ := setupOrderServiceTest(t)

	// No cart at all
	_, err := orderService.SubmitOrder(user.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	// A cart with no lines
	_, err = cartService.GetCart(user.ID)
	require.NoError(t, err)
	_, err = orderService.SubmitOrder(user.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Len(t, m.sent, 0)
}

func TestOrderService_SubmitOrder_DoubleSubmission(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	_, err = orderService.SubmitOrder(user.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyCart, "a submitted order is no longer the cart")
}

func TestOrderService_SubmitOrder_MailFailureDoesNotRollBack(t *testing.T) {
	orderService, cartService, user, m, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)
	m.sendErr = assert.AnError

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)

	order, err := orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusSubmitted, order.Status)
}

func TestOrderService_GetOrder_OwnershipHiding(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com"}
	require.NoError(t, testDB.Create(other).Error)

	// Another user sees not-found, not forbidden
	_, err = orderService.GetOrder(other.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// The owner and admins see the order
	got, err := orderService.GetOrder(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	got, err = orderService.GetOrder(other.ID, true, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusOrdered))

	got, err := orderService.GetOrder(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusOrdered, got.Status)

	assert.ErrorIs(t, orderService.UpdateOrderStatus(order.ID, "SHIPPED"), ErrInvalidStatus)
	assert.ErrorIs(t, orderService.UpdateOrderStatus(9999, model.OrderStatusOrdered), ErrOrderNotFound)
}

func TestOrderService_BulkUpdateOrderStatus(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	var ids []uint
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u := &model.User{Email: email}
		require.NoError(t, testDB.Create(u).Error)
		_, err := cartService.AddItem(u.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
		require.NoError(t, err)
		order, err := orderService.SubmitOrder(u.ID, nil)
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	_ = user

	updated, err := orderService.BulkUpdateOrderStatus(ids, model.OrderStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	_, err = orderService.BulkUpdateOrderStatus(ids, "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err = orderService.BulkUpdateOrderStatus(nil, model.OrderStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestOrderService_SetOrderPaid(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)
	order, err := orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	require.NoError(t, orderService.SetOrderPaid(order.ID, true))
	got, err := orderService.GetOrder(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)

	assert.ErrorIs(t, orderService.SetOrderPaid(9999, true), ErrOrderNotFound)
}

func TestOrderService_ListOrders_StatusFilter(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	sticker := createTestItem(t, testDB, "Sticker", 500, 1)

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: sticker.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	orders, err := orderService.ListOrders(string(model.OrderStatusSubmitted))
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = orderService.ListOrders(string(model.OrderStatusReceived))
	require.NoError(t, err)
	assert.Len(t, orders, 0)

	_, err = orderService.ListOrders("BOGUS")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_ExportOrders(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	jersey := createTestItem(t, testDB, "Jersey", 3500, 1, "M")

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: jersey.ID, Quantity: 2, Size: "M"})
	require.NoError(t, err)
	_, err = orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	data, err := orderService.ExportOrders()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestOrderService_ExportOrders_ExcludesCarts(t *testing.T) {
	orderService, cartService, user, _, _, testDB := setupOrderServiceTest(t)
	jersey := createTestItem(t, testDB, "Jersey", 3500, 1, "M")

	_, err := cartService.AddItem(user.ID, AddItemInput{ItemID: jersey.ID, Quantity: 1, Size: "M"})
	require.NoError(t, err)
	_, err = orderService.SubmitOrder(user.ID, nil)
	require.NoError(t, err)

	// A second user's cart that was never submitted
	other := &model.User{Email: "other@example.com"}
	require.NoError(t, testDB.Create(other).Error)
	_, err = cartService.AddItem(other.ID, AddItemInput{ItemID: jersey.ID, Quantity: 3, Size: "M"})
	require.NoError(t, err)

	data, err := orderService.ExportOrders()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	// Header plus the one submitted line; the cart stays out
	require.Len(t, rows, 2)
	assert.Equal(t, "fan@example.com", rows[1][1])

	for _, row := range rows[1:] {
		assert.NotEqual(t, string(model.OrderStatusEditable), row[2])
	}
}
