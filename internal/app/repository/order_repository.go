package repository

import (
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindEditableByUserID(userID uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll(status string) ([]model.Order, error)
	Update(order *model.Order) error

	// SubmitIfEditable transitions an order from EDITABLE to SUBMITTED,
	// setting the note in the same statement when one is given.
	// Returns false when the order was not EDITABLE anymore, which
	// covers concurrent double submission.
	SubmitIfEditable(orderID uint, note *string) (bool, error)

	UpdateStatus(id uint, status model.OrderStatus) (int64, error)
	BulkUpdateStatus(ids []uint, status model.OrderStatus) (int64, error)
	UpdatePaid(id uint, paid bool) (int64, error)

	// RecalculateTotal derives the order total from its lines in a
	// single statement.
	RecalculateTotal(orderID uint) error
	FindTotalMismatches() ([]uint, error)

	CreateLine(line *model.OrderItem) error
	FindLineByID(id uint) (*model.OrderItem, error)
	UpdateLine(line *model.OrderItem) error
	DeleteLine(id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.created_at ASC").Preload("Item")
	}).Preload("User")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id": order.UserID,
		"status":  order.Status,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindEditableByUserID(userID uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().
		Where("user_id = ? AND status = ?", userID, model.OrderStatusEditable).
		First(&order).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find editable order in database", err, map[string]interface{}{
				"user_id": userID,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindAll(status string) ([]model.Order, error) {
	query := r.preloadOrder()
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) SubmitIfEditable(orderID uint, note *string) (bool, error) {
	updates := map[string]interface{}{
		"status": model.OrderStatusSubmitted,
	}
	if note != nil {
		updates["note"] = *note
	}

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusEditable).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to submit order in database", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) BulkUpdateStatus(ids []uint, status model.OrderStatus) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id IN ?", ids).
		Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to bulk update order status in database", result.Error, map[string]interface{}{
			"order_ids": ids,
			"status":    status,
		})
		return 0, result.Error
	}

	logger.Debug("Orders bulk updated in database", map[string]interface{}{
		"requested": len(ids),
		"updated":   result.RowsAffected,
		"status":    status,
	})
	return result.RowsAffected, nil
}

func (r *orderRepository) UpdatePaid(id uint, paid bool) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("paid", paid)
	if result.Error != nil {
		logger.Error("Failed to update order paid flag in database", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *orderRepository) RecalculateTotal(orderID uint) error {
	if err := r.db.Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("total_cents", gorm.Expr(
			"(SELECT COALESCE(SUM(line_total_cents), 0) FROM order_items WHERE order_id = ?)",
			orderID,
		)).Error; err != nil {
		logger.Error("Failed to recalculate order total in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindTotalMismatches() ([]uint, error) {
	var ids []uint
	if err := r.db.Raw(
		`SELECT o.id FROM orders o
		 WHERE o.total_cents <>
		 (SELECT COALESCE(SUM(oi.line_total_cents), 0) FROM order_items oi WHERE oi.order_id = o.id)`,
	).Scan(&ids).Error; err != nil {
		logger.Error("Failed to find order total mismatches", err)
		return nil, err
	}
	return ids, nil
}

func (r *orderRepository) CreateLine(line *model.OrderItem) error {
	logger.Debug("Creating order line in database", map[string]interface{}{
		"order_id": line.OrderID,
		"item_id":  line.ItemID,
		"quantity": line.Quantity,
	})

	if err := r.db.Create(line).Error; err != nil {
		logger.Error("Failed to create order line in database", err, map[string]interface{}{
			"order_id": line.OrderID,
			"item_id":  line.ItemID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindLineByID(id uint) (*model.OrderItem, error) {
	var line model.OrderItem
	if err := r.db.Preload("Item").First(&line, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order line in database", err, map[string]interface{}{
				"line_id": id,
			})
		}
		return nil, err
	}
	return &line, nil
}

func (r *orderRepository) UpdateLine(line *model.OrderItem) error {
	if err := r.db.Save(line).Error; err != nil {
		logger.Error("Failed to update order line in database", err, map[string]interface{}{
			"line_id": line.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) DeleteLine(id uint) error {
	if err := r.db.Delete(&model.OrderItem{}, id).Error; err != nil {
		logger.Error("Failed to delete order line in database", err, map[string]interface{}{
			"line_id": id,
		})
		return err
	}
	return nil
}
