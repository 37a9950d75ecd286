package service

import (
	"testing"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogServiceTest(t *testing.T) (CatalogService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	itemRepo := repository.NewItemRepository(testDB)
	return NewCatalogService(itemRepo), testDB
}

func displayOrderByName(t *testing.T, svc CatalogService) map[string]int {
	t.Helper()
	items, err := svc.ListItems(true)
	require.NoError(t, err)

	positions := make(map[string]int, len(items))
	for _, item := range items {
		positions[item.Name] = item.DisplayOrder
	}
	return positions
}

func TestCatalogService_CreateItem_AppendsToDisplayOrder(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	for i, name := range []string{"A", "B", "C"} {
		item, err := svc.CreateItem(ItemInput{Name: name, PriceCents: 1000})
		require.NoError(t, err)
		assert.Equal(t, i+1, item.DisplayOrder)
	}

	items, err := svc.ListItems(true)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestCatalogService_CreateItem_Validation(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	_, err := svc.CreateItem(ItemInput{Name: "  ", PriceCents: 1000})
	assert.ErrorIs(t, err, ErrInvalidItemInput)

	_, err = svc.CreateItem(ItemInput{Name: "Jersey", PriceCents: -1})
	assert.ErrorIs(t, err, ErrInvalidItemInput)

	_, err = svc.CreateItem(ItemInput{Name: "Jersey", PriceCents: 1000, Sizes: []string{"M", " "}})
	assert.ErrorIs(t, err, ErrInvalidItemInput)
}

func TestCatalogService_ListItems_ActiveFilter(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	_, err := svc.CreateItem(ItemInput{Name: "Visible", PriceCents: 1000})
	require.NoError(t, err)
	inactive := false
	_, err = svc.CreateItem(ItemInput{Name: "Hidden", PriceCents: 1000, Active: &inactive})
	require.NoError(t, err)

	items, err := svc.ListItems(false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Visible", items[0].Name)

	items, err = svc.ListItems(true)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCatalogService_SwapDisplayOrder(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	a, err := svc.CreateItem(ItemInput{Name: "A", PriceCents: 1000})
	require.NoError(t, err)
	b, err := svc.CreateItem(ItemInput{Name: "B", PriceCents: 1000})
	require.NoError(t, err)

	require.NoError(t, svc.SwapDisplayOrder(a.ID, 1, b.ID, 2))

	positions := displayOrderByName(t, svc)
	assert.Equal(t, 2, positions["A"])
	assert.Equal(t, 1, positions["B"])
}

func TestCatalogService_SwapDisplayOrder_StalePositions(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	a, err := svc.CreateItem(ItemInput{Name: "A", PriceCents: 1000})
	require.NoError(t, err)
	b, err := svc.CreateItem(ItemInput{Name: "B", PriceCents: 1000})
	require.NoError(t, err)

	// The caller believes A is at 2 and B at 1, but nothing moved yet
	err = svc.SwapDisplayOrder(a.ID, 2, b.ID, 1)
	assert.ErrorIs(t, err, ErrDisplayOrderConflict)

	// Nothing changed
	positions := displayOrderByName(t, svc)
	assert.Equal(t, 1, positions["A"])
	assert.Equal(t, 2, positions["B"])
}

func TestCatalogService_SwapDisplayOrder_SameItem(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	a, err := svc.CreateItem(ItemInput{Name: "A", PriceCents: 1000})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SwapDisplayOrder(a.ID, 1, a.ID, 1), ErrInvalidPosition)
}

func TestCatalogService_MoveItemToPosition_ShiftsDown(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	names := []string{"A", "B", "C", "D", "E"}
	items := make(map[string]*model.Item, len(names))
	for _, name := range names {
		item, err := svc.CreateItem(ItemInput{Name: name, PriceCents: 1000})
		require.NoError(t, err)
		items[name] = item
	}

	// Move the item at position 4 to position 1
	require.NoError(t, svc.MoveItemToPosition(items["D"].ID, 1))

	positions := displayOrderByName(t, svc)
	assert.Equal(t, 1, positions["D"])
	assert.Equal(t, 2, positions["A"])
	assert.Equal(t, 3, positions["B"])
	assert.Equal(t, 4, positions["C"])
	assert.Equal(t, 5, positions["E"])
}

func TestCatalogService_MoveItemToPosition_ShiftsUp(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	names := []string{"A", "B", "C", "D", "E"}
	items := make(map[string]*model.Item, len(names))
	for _, name := range names {
		item, err := svc.CreateItem(ItemInput{Name: name, PriceCents: 1000})
		require.NoError(t, err)
		items[name] = item
	}

	// Move the item at position 2 to position 5
	require.NoError(t, svc.MoveItemToPosition(items["B"].ID, 5))

	positions := displayOrderByName(t, svc)
	assert.Equal(t, 1, positions["A"])
	assert.Equal(t, 2, positions["C"])
	assert.Equal(t, 3, positions["D"])
	assert.Equal(t, 4, positions["E"])
	assert.Equal(t, 5, positions["B"])
}

func TestCatalogService_MoveItemToPosition_Bounds(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	a, err := svc.CreateItem(ItemInput{Name: "A", PriceCents: 1000})
	require.NoError(t, err)
	_, err = svc.CreateItem(ItemInput{Name: "B", PriceCents: 1000})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MoveItemToPosition(a.ID, 0), ErrInvalidPosition)
	assert.ErrorIs(t, svc.MoveItemToPosition(a.ID, 3), ErrInvalidPosition)

	// Moving to the current position is a no-op
	require.NoError(t, svc.MoveItemToPosition(a.ID, 1))
}

func TestCatalogService_DeleteItem_ClosesGap(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	items := make(map[string]*model.Item)
	for _, name := range []string{"A", "B", "C"} {
		item, err := svc.CreateItem(ItemInput{Name: name, PriceCents: 1000})
		require.NoError(t, err)
		items[name] = item
	}

	require.NoError(t, svc.DeleteItem(items["B"].ID))

	positions := displayOrderByName(t, svc)
	assert.Equal(t, 1, positions["A"])
	assert.Equal(t, 2, positions["C"])
	assert.NotContains(t, positions, "B")
}

func TestCatalogService_DeleteItem_GuardedByOrderLines(t *testing.T) {
	svc, testDB := setupCatalogServiceTest(t)

	item, err := svc.CreateItem(ItemInput{Name: "Jersey", PriceCents: 1000})
	require.NoError(t, err)

	user := &model.User{Email: "fan@example.com"}
	require.NoError(t, testDB.Create(user).Error)
	order := &model.Order{UserID: user.ID, Status: model.OrderStatusSubmitted}
	require.NoError(t, testDB.Create(order).Error)
	require.NoError(t, testDB.Create(&model.OrderItem{
		OrderID: order.ID, ItemID: item.ID, Quantity: 1, LineTotalCents: 1000,
	}).Error)

	assert.ErrorIs(t, svc.DeleteItem(item.ID), ErrItemInUse)

	// The item is still there
	_, err = svc.GetItem(item.ID)
	assert.NoError(t, err)
}

func TestCatalogService_DeleteItem_NotFound(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)
	assert.ErrorIs(t, svc.DeleteItem(42), ErrItemNotFound)
}

func TestCatalogService_UpdateItem(t *testing.T) {
	svc, _ := setupCatalogServiceTest(t)

	item, err := svc.CreateItem(ItemInput{Name: "Jersey", PriceCents: 1000, Sizes: []string{"M"}})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateItem(item.ID, ItemInput{
		Name:       "Away Jersey",
		PriceCents: 2000,
		Active:     &inactive,
		Sizes:      []string{"M", "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Away Jersey", updated.Name)
	assert.Equal(t, int64(2000), updated.PriceCents)
	assert.False(t, updated.Active)
	assert.Equal(t, model.StringList{"M", "L"}, updated.Sizes)
	// Display order is not writable through update
	assert.Equal(t, item.DisplayOrder, updated.DisplayOrder)
}
