package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/internal/db"
	"gorm.io/gorm"
)

func setupSchedulerTest(t *testing.T) (*MaintenanceScheduler, *gorm.DB) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	s := NewMaintenanceScheduler(
		repository.NewLoginTokenRepository(testDB),
		repository.NewOrderRepository(testDB),
	)
	return s, testDB
}

func TestPurgeLoginTokens(t *testing.T) {
	s, testDB := setupSchedulerTest(t)

	user := &model.User{Email: "fan@example.com"}
	require.NoError(t, testDB.Create(user).Error)

	now := time.Now()
	consumedAt := now.Add(-time.Hour)
	tokens := []model.LoginToken{
		{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
		{Token: "expired", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)},
		{Token: "spent", UserID: user.ID, ExpiresAt: now.Add(time.Hour), ConsumedAt: &consumedAt},
	}
	require.NoError(t, testDB.Create(&tokens).Error)

	s.PurgeLoginTokens()

	var remaining []model.LoginToken
	require.NoError(t, testDB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].Token)
}

func TestAuditOrderTotals_RepairsDrift(t *testing.T) {
	s, testDB := setupSchedulerTest(t)

	user := &model.User{Email: "fan@example.com"}
	require.NoError(t, testDB.Create(user).Error)
	item := &model.Item{Name: "Jersey", PriceCents: 2500, Active: true, DisplayOrder: 1}
	require.NoError(t, testDB.Create(item).Error)

	order := &model.Order{UserID: user.ID, Status: model.OrderStatusSubmitted, TotalCents: 99}
	require.NoError(t, testDB.Create(order).Error)
	line := &model.OrderItem{OrderID: order.ID, ItemID: item.ID, Quantity: 2, LineTotalCents: 5000}
	require.NoError(t, testDB.Create(line).Error)

	s.AuditOrderTotals()

	var repaired model.Order
	require.NoError(t, testDB.First(&repaired, order.ID).Error)
	assert.Equal(t, int64(5000), repaired.TotalCents)
}

func TestAuditOrderTotals_NoMismatches(t *testing.T) {
	s, testDB := setupSchedulerTest(t)

	user := &model.User{Email: "fan@example.com"}
	require.NoError(t, testDB.Create(user).Error)
	order := &model.Order{UserID: user.ID, Status: model.OrderStatusSubmitted, TotalCents: 0}
	require.NoError(t, testDB.Create(order).Error)

	// Must not touch a consistent order
	s.AuditOrderTotals()

	var unchanged model.Order
	require.NoError(t, testDB.First(&unchanged, order.ID).Error)
	assert.Equal(t, int64(0), unchanged.TotalCents)
}

func TestSchedulerStartStop(t *testing.T) {
	s, _ := setupSchedulerTest(t)
	require.NoError(t, s.Start())
	s.Stop()
}
