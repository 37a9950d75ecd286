package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
)

// MaintenanceScheduler runs periodic housekeeping: purging dead login
// tokens and auditing order totals against their lines.
type MaintenanceScheduler struct {
	cron      *cron.Cron
	tokenRepo repository.LoginTokenRepository
	orderRepo repository.OrderRepository
}

func NewMaintenanceScheduler(
	tokenRepo repository.LoginTokenRepository,
	orderRepo repository.OrderRepository,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:      cron.New(),
		tokenRepo: tokenRepo,
		orderRepo: orderRepo,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *MaintenanceScheduler) Start() error {
	// Hourly: drop consumed and expired login tokens
	if _, err := s.cron.AddFunc("0 * * * *", s.PurgeLoginTokens); err != nil {
		logger.Error("Failed to add login token purge job", err)
		return err
	}

	// Daily at 06:00: verify order totals match their lines
	if _, err := s.cron.AddFunc("0 6 * * *", s.AuditOrderTotals); err != nil {
		logger.Error("Failed to add order totals audit job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started")
	return nil
}

// Stop stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	s.cron.Stop()
}

// PurgeLoginTokens removes tokens that are expired or already spent.
func (s *MaintenanceScheduler) PurgeLoginTokens() {
	deleted, err := s.tokenRepo.DeleteExpired(time.Now())
	if err != nil {
		logger.Error("Failed to purge login tokens", err)
		return
	}

	logger.Info("Purged login tokens", map[string]interface{}{
		"deleted": deleted,
	})
}

// AuditOrderTotals repairs orders whose stored total has drifted from
// the sum of their lines. Drift indicates a bug elsewhere, so every
// repaired order is logged loudly.
func (s *MaintenanceScheduler) AuditOrderTotals() {
	ids, err := s.orderRepo.FindTotalMismatches()
	if err != nil {
		logger.Error("Failed to audit order totals", err)
		return
	}
	if len(ids) == 0 {
		logger.Info("Order totals audit passed")
		return
	}

	logger.Warn("Order totals audit found mismatches", map[string]interface{}{
		"order_ids": ids,
	})
	for _, id := range ids {
		if err := s.orderRepo.RecalculateTotal(id); err != nil {
			logger.Error("Failed to repair order total", err, map[string]interface{}{
				"order_id": id,
			})
		}
	}
}
