package repository

import (
	"errors"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var errPositionConflict = errors.New("display order position conflict")

type ItemRepository interface {
	Create(item *model.Item) error
	FindByID(id uint) (*model.Item, error)
	FindAll(activeOnly bool) ([]model.Item, error)
	Update(item *model.Item) error

	// Delete removes an item and closes the gap it leaves in the
	// display order sequence.
	Delete(id uint, displayOrder int) error
	CountOrderLines(itemID uint) (int64, error)
	MaxDisplayOrder() (int, error)

	// SwapDisplayOrders exchanges the positions of two items. Both
	// expected positions must still hold when the update runs; it
	// returns false without error when either has moved in the
	// meantime.
	SwapDisplayOrders(aID uint, aPos int, bID uint, bPos int) (bool, error)

	// MoveDisplayOrder moves an item from one position to another,
	// shifting the items in between so positions stay dense. Returns
	// false when the item is no longer at the expected from position.
	MoveDisplayOrder(itemID uint, from, to int) (bool, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(item *model.Item) error {
	logger.Debug("Creating item in database", map[string]interface{}{
		"name":          item.Name,
		"price_cents":   item.PriceCents,
		"display_order": item.DisplayOrder,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create item in database", err, map[string]interface{}{
			"name": item.Name,
		})
		return err
	}

	logger.Debug("Item created in database", map[string]interface{}{
		"item_id": item.ID,
		"name":    item.Name,
	})
	return nil
}

func (r *itemRepository) FindByID(id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.First(&item, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find item by ID in database", err, map[string]interface{}{
				"item_id": id,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindAll(activeOnly bool) ([]model.Item, error) {
	var items []model.Item
	query := r.db.Order("display_order ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&items).Error; err != nil {
		logger.Error("Failed to find items in database", err)
		return nil, err
	}

	logger.Debug("Items found in database", map[string]interface{}{
		"count":       len(items),
		"active_only": activeOnly,
	})
	return items, nil
}

func (r *itemRepository) Update(item *model.Item) error {
	logger.Debug("Updating item in database", map[string]interface{}{
		"item_id": item.ID,
	})

	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update item in database", err, map[string]interface{}{
			"item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *itemRepository) Delete(id uint, displayOrder int) error {
	logger.Debug("Deleting item from database", map[string]interface{}{
		"item_id":       id,
		"display_order": displayOrder,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Item{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&model.Item{}).
			Where("display_order > ?", displayOrder).
			Update("display_order", gorm.Expr("display_order - 1")).Error
	})
	if err != nil {
		logger.Error("Failed to delete item from database", err, map[string]interface{}{
			"item_id": id,
		})
		return err
	}
	return nil
}

func (r *itemRepository) CountOrderLines(itemID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.OrderItem{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		logger.Error("Failed to count order lines for item", err, map[string]interface{}{
			"item_id": itemID,
		})
		return 0, err
	}
	return count, nil
}

func (r *itemRepository) MaxDisplayOrder() (int, error) {
	var max int
	if err := r.db.Model(&model.Item{}).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error; err != nil {
		logger.Error("Failed to get max display order", err)
		return 0, err
	}
	return max, nil
}

func (r *itemRepository) SwapDisplayOrders(aID uint, aPos int, bID uint, bPos int) (bool, error) {
	logger.Debug("Swapping item display orders in database", map[string]interface{}{
		"a_id":  aID,
		"a_pos": aPos,
		"b_id":  bID,
		"b_pos": bPos,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Item{}).
			Where("id = ? AND display_order = ?", aID, aPos).
			Update("display_order", bPos)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPositionConflict
		}

		res = tx.Model(&model.Item{}).
			Where("id = ? AND display_order = ?", bID, bPos).
			Update("display_order", aPos)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPositionConflict
		}
		return nil
	})
	if errors.Is(err, errPositionConflict) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to swap item display orders", err, map[string]interface{}{
			"a_id": aID,
			"b_id": bID,
		})
		return false, err
	}
	return true, nil
}

func (r *itemRepository) MoveDisplayOrder(itemID uint, from, to int) (bool, error) {
	logger.Debug("Moving item display order in database", map[string]interface{}{
		"item_id": itemID,
		"from":    from,
		"to":      to,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Shift the items between the two positions so the sequence
		// stays dense. The ranges exclude the moving item itself.
		if to < from {
			if err := tx.Model(&model.Item{}).
				Where("display_order >= ? AND display_order < ?", to, from).
				Update("display_order", gorm.Expr("display_order + 1")).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&model.Item{}).
				Where("display_order > ? AND display_order <= ?", from, to).
				Update("display_order", gorm.Expr("display_order - 1")).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&model.Item{}).
			Where("id = ? AND display_order = ?", itemID, from).
			Update("display_order", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPositionConflict
		}
		return nil
	})
	if errors.Is(err, errPositionConflict) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to move item display order", err, map[string]interface{}{
			"item_id": itemID,
			"from":    from,
			"to":      to,
		})
		return false, err
	}
	return true, nil
}
